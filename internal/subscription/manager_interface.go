package subscription

import "github.com/VitaminP8/picstream/graph/model"

type Manager interface {
	Subscribe(postID string) (<-chan *model.Comment, func())
	Publish(postID string, comment *model.Comment)
}
