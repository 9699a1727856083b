package api

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/BBQAnChang/SBHomework/pkg/types"
)

const usersPath = "/users"

// UserResponse is the user payload returned by the user endpoints
type UserResponse struct {
	UserID     string `json:"user_id"`
	Nickname   string `json:"nickname"`
	ProfileURL string `json:"profile_url"`
}

func (r UserResponse) ToUser() types.User {
	return types.User{
		UserID:     r.UserID,
		Nickname:   r.Nickname,
		ProfileURL: r.ProfileURL,
	}
}

type UsersResponse struct {
	Users []UserResponse `json:"users"`
	Next  string         `json:"next,omitempty"`
}

func (r UsersResponse) ToUsers() []types.User {
	users := make([]types.User, 0, len(r.Users))
	for _, u := range r.Users {
		users = append(users, u.ToUser())
	}
	return users
}

// CreateUser is POST /users
type CreateUser struct {
	baseRequest
	Params types.UserCreationParams
}

type createUserBody struct {
	types.UserCreationParams
	IssueAccessToken bool `json:"issue_access_token"`
}

func (CreateUser) Method() string { return http.MethodPost }
func (CreateUser) Path() string   { return usersPath }

func (r CreateUser) Body() interface{} {
	return createUserBody{UserCreationParams: r.Params}
}

// UpdateUser is PUT /users/{user_id}
type UpdateUser struct {
	baseRequest
	Params types.UserUpdateParams
}

func (UpdateUser) Method() string { return http.MethodPut }

func (r UpdateUser) Path() string {
	return usersPath + "/" + url.PathEscape(r.Params.UserID)
}

func (r UpdateUser) Body() interface{} {
	return r.Params
}

// GetUser is GET /users/{user_id}
type GetUser struct {
	baseRequest
	UserID string
}

func (GetUser) Method() string { return http.MethodGet }

func (r GetUser) Path() string {
	return usersPath + "/" + url.PathEscape(r.UserID)
}

// ListUsers is GET /users filtered by exact nickname
type ListUsers struct {
	baseRequest
	Nickname string
	Limit    int
}

func (ListUsers) Method() string { return http.MethodGet }
func (ListUsers) Path() string   { return usersPath }

func (r ListUsers) Query() url.Values {
	q := url.Values{}
	q.Set("nickname", r.Nickname)
	if r.Limit > 0 {
		q.Set("limit", strconv.Itoa(r.Limit))
	}
	return q
}

var (
	_ Request = CreateUser{}
	_ Request = UpdateUser{}
	_ Request = GetUser{}
	_ Request = ListUsers{}
)
