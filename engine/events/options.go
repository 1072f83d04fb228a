package events

import "github.com/rs/zerolog"

// MatchMode selects how Unsubscribe(origin, tag) finds subscriptions.
type MatchMode uint8

const (
	// MatchRegistrationTag removes subscriptions whose origin and
	// registration tag both match.
	MatchRegistrationTag MatchMode = iota
	// MatchOriginName removes subscriptions of origin when the origin's
	// display name equals the tag, whatever tag was used to subscribe.
	// Kept for assets authored against that behaviour.
	MatchOriginName
)

func (m MatchMode) String() string {
	if m == MatchOriginName {
		return "origin-name"
	}
	return "tag"
}

// ParseMatchMode maps a config value to a MatchMode. Unknown values select
// MatchRegistrationTag.
func ParseMatchMode(s string) MatchMode {
	if s == "origin-name" {
		return MatchOriginName
	}
	return MatchRegistrationTag
}

type options struct {
	persist bool
	match   MatchMode
	log     zerolog.Logger
}

// Option configures a channel
type Option func(*options)

// PersistThroughSceneChanges keeps subscribers and the last raised value
// when a scene unloads.
func PersistThroughSceneChanges() Option {
	return func(o *options) { o.persist = true }
}

// WithPersist sets the persistence flag explicitly.
func WithPersist(persist bool) Option {
	return func(o *options) { o.persist = persist }
}

func WithMatchMode(m MatchMode) Option {
	return func(o *options) { o.match = m }
}

func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.log = l }
}

func buildOptions(opts []Option) options {
	o := options{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
