package grpc

import (
	"time"

	"github.com/dmitrijs2005/netwerker/internal/server/models"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "netwerker.v1.Netwerker"

// FullMethod returns the "/service/method" path of a method.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// UserView is the public shape of a user. Internal ids never leave the server.
type UserView struct {
	UUID          string    `json:"uuid"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Org           string    `json:"org,omitempty"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
}

func newUserView(u *models.User) UserView {
	return UserView{
		UUID:          u.UUID,
		Name:          u.Name,
		Email:         u.Email,
		Org:           u.Org,
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
	}
}

func newUserList(us []*models.User) *UserListResponse {
	items := make([]UserView, 0, len(us))
	for _, u := range us {
		items = append(items, newUserView(u))
	}
	return &UserListResponse{Items: items, TotalItems: len(items)}
}

// LoginRequest carries no fields: credentials travel in the "authorization"
// metadata as a Basic header.
type LoginRequest struct{}

type LoginResponse struct {
	User         UserView  `json:"user"`
	Org          string    `json:"org,omitempty"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type RefreshResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Org      string `json:"org,omitempty"`
}

type UserResponse struct {
	User UserView `json:"user"`
}

type ListUsersRequest struct{}

type UserListResponse struct {
	Items      []UserView `json:"items"`
	TotalItems int        `json:"total_items"`
}

type GetUserRequest struct {
	UUID string `json:"uuid"`
}

type PatchUserRequest struct {
	UUID  string `json:"uuid"`
	Email string `json:"email"`
}

type ListFriendsRequest struct {
	UUID string `json:"uuid"`
}

type AddFriendRequest struct {
	UUID       string `json:"uuid"`
	FriendUUID string `json:"friend_uuid"`
}

type AddFriendResponse struct{}

type DistanceRequest struct {
	UUID      string `json:"uuid"`
	OtherUUID string `json:"other_uuid"`
}

// DistanceResponse reports Found == false when no path exists.
type DistanceResponse struct {
	Found   bool `json:"found"`
	Hops    int  `json:"hops"`
	Visited int  `json:"visited"`
}
