package graph

import (
	"github.com/VitaminP8/picstream/internal/post"
	"github.com/VitaminP8/picstream/internal/social"
	"github.com/VitaminP8/picstream/internal/subscription"
	"github.com/VitaminP8/picstream/internal/token"
	"github.com/VitaminP8/picstream/internal/user"
)

// Resolver служит корневой точкой для всех резолверов.
// Здесь можно внедрять зависимости, например хранилища.
type Resolver struct {
	UserStore           user.UserStorage
	PostStore           post.PostStorage
	GraphStore          social.GraphStorage
	TokenStore          token.TokenStorage
	SubscriptionManager subscription.Manager
}
