// Package main is the entry point for the usermanager CLI.
package main

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/BBQAnChang/SBHomework/cmd/usermanager/app"
)

func main() {
	if err := app.NewRootCmd().Execute(); err != nil {
		logrus.WithError(err).Error("command failed")
		os.Exit(1)
	}
}
