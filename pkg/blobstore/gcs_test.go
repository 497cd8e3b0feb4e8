package blobstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectName(t *testing.T) {
	a := ObjectName("photo.JPG")
	b := ObjectName("photo.JPG")

	assert.NotEqual(t, a, b, "names must be unique per upload")
	assert.Regexp(t, `\.jpg$`, a)
	assert.Regexp(t, `\.jpg$`, b)

	assert.NotContains(t, ObjectName("noext"), ".")
}

func TestObjectFromURL(t *testing.T) {
	c := New(nil, "easypay-photos")

	name, err := c.objectFromURL("https://storage.googleapis.com/easypay-photos/abc123.png")
	require.NoError(t, err)
	assert.Equal(t, "abc123.png", name)

	t.Run("WrongBucket", func(t *testing.T) {
		_, err := c.objectFromURL("https://storage.googleapis.com/other-bucket/abc.png")
		assert.Error(t, err)
	})

	t.Run("EmptyObject", func(t *testing.T) {
		_, err := c.objectFromURL("https://storage.googleapis.com/easypay-photos/")
		assert.Error(t, err)
	})
}

func TestPublicURLRoundTrip(t *testing.T) {
	c := New(nil, "easypay-photos")
	name := ObjectName("widget.png")

	got, err := c.objectFromURL(c.PublicURL(name))
	require.NoError(t, err)
	assert.Equal(t, name, got)
}
