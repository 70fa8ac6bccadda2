package retrieval

import (
	"context"

	"github.com/docqa/docqa/embedder"
	"github.com/docqa/docqa/store"
	"github.com/docqa/docqa/util/retry"
)

type Option func(*Options)

type Options struct {
	Embedder embedder.Embedder
	Store    store.Store
	Retry    retry.Config
	Context  context.Context
}

func WithEmbedder(e embedder.Embedder) Option {
	return func(o *Options) {
		o.Embedder = e
	}
}

func WithStore(s store.Store) Option {
	return func(o *Options) {
		o.Store = s
	}
}

func WithRetry(cfg retry.Config) Option {
	return func(o *Options) {
		o.Retry = cfg
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Retry:   retry.DefaultConfig(),
		Context: context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
