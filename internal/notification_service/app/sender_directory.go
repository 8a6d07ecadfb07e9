package app

// StaticSenderDirectory serves sender identities from configuration.
type StaticSenderDirectory map[string]string

func (d StaticSenderDirectory) SenderFor(channel string) (string, bool) {
	s, ok := d[channel]
	return s, ok
}
