package events

// Variable reads either a constant or the last value of a channel.
type Variable[T any] struct {
	channel  *Channel[T]
	constant bool
	value    T
}

// Constant returns a variable that always reads v
func Constant[T any](v T) *Variable[T] {
	return &Variable[T]{constant: true, value: v}
}

// Bound returns a variable backed by c
func Bound[T any](c *Channel[T]) *Variable[T] {
	return &Variable[T]{channel: c}
}

// Value returns the constant, or the channel's last raised value
func (v *Variable[T]) Value() T {
	if v.constant || v.channel == nil {
		return v.value
	}
	return v.channel.LastValue()
}

// Set stores x and raises it on the backing channel, if any.
func (v *Variable[T]) Set(x T) {
	v.value = x
	if v.channel != nil {
		v.channel.RaiseValue(x)
	}
}

// Channel returns the backing channel, nil for constants
func (v *Variable[T]) Channel() *Channel[T] {
	return v.channel
}
