package domain

// Zero overwrites b with zeros so key material does not linger after use.
func Zero(b []byte) {
	clear(b)
}
