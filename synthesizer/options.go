package synthesizer

import (
	"context"

	"github.com/docqa/docqa/generator"
)

type Option func(*Options)

type Options struct {
	Generator      generator.Generator
	MaxContextSize int
	Context        context.Context
}

func WithGenerator(g generator.Generator) Option {
	return func(o *Options) {
		o.Generator = g
	}
}

func WithMaxContextSize(size int) Option {
	return func(o *Options) {
		o.MaxContextSize = size
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		MaxContextSize: 8000,
		Context:        context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
