package pipeline

import (
	"context"
	"time"

	"github.com/docqa/docqa/embedder"
	"github.com/docqa/docqa/store"
	"github.com/docqa/docqa/util/retry"
)

type Option func(*Options)

type Options struct {
	Embedder     embedder.Embedder
	Store        store.Store
	Fetcher      Fetcher
	Retry        retry.Config
	FetchTimeout time.Duration
	Context      context.Context
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

func WithFetcher(f Fetcher) Option {
	return func(o *Options) {
		o.Fetcher = f
	}
}

func WithRetry(cfg retry.Config) Option {
	return func(o *Options) {
		o.Retry = cfg
	}
}

func WithFetchTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		o.FetchTimeout = timeout
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Retry:        retry.DefaultConfig(),
		FetchTimeout: 30 * time.Second,
		Context:      context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
