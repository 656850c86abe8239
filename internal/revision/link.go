package revision

import "fmt"

// DefaultHost is the source browser that revision links point at.
const DefaultHost = "code.google.com/p/skia"

// Linker formats revision links against a source browser host.
type Linker struct {
	Host string
}

// Link returns an HTML anchor to the change page of rev, showing rev as
// the link text. rev is not validated.
func (l Linker) Link(rev string) string {
	host := l.Host
	if host == "" {
		host = DefaultHost
	}
	return fmt.Sprintf(`<a href="http://%s/source/detail?r=%s">%s</a>`, host, rev, rev)
}

// FormatLink links rev on DefaultHost.
func FormatLink(rev string) string {
	return Linker{}.Link(rev)
}
