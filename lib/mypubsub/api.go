package mypubsub

import "context"

//go:generate mockgen -source=api.go -package mypubsub -destination pubsub_mock.go Publisher
type Publisher interface {
	CreateTopic(c context.Context, topic string) error
	Publish(c context.Context, topic string, data string) error
}

var New func(c context.Context) (Publisher, func(), error)
