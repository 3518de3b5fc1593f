package client

// addressList is the ordered set of server addresses a Conn rotates
// through on failed connection attempts.
type addressList struct {
	addrs  []string
	cursor int
}

func newAddressList(addrs []string) *addressList {
	return &addressList{addrs: append([]string(nil), addrs...)}
}

func (a *addressList) current() string {
	return a.addrs[a.cursor]
}

func (a *addressList) advance() string {
	a.cursor = (a.cursor + 1) % len(a.addrs)
	return a.current()
}

func (a *addressList) all() []string {
	return append([]string(nil), a.addrs...)
}

// fromCurrent returns the addresses starting at the current one.
func (a *addressList) fromCurrent() []string {
	out := make([]string, 0, len(a.addrs))
	out = append(out, a.addrs[a.cursor:]...)
	return append(out, a.addrs[:a.cursor]...)
}
