package s3

import "Ossctl/internal/keyspace"

// Key maps a bucket-relative key to the full key under the root prefix.
func (c *Client) Key(relative string) string {
	return keyspace.Join(c.prefix, relative)
}

func (c *Client) relative(full string) string {
	return keyspace.Strip(c.prefix, full)
}
