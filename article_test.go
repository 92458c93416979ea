package kindlebeam_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	kindlebeam "github.com/etanshaul/kindle-beam"
)

func TestArticle_Validate(t *testing.T) {
	t.Parallel()

	t.Run("accepts an article with content", func(t *testing.T) {
		t.Parallel()
		a := &kindlebeam.Article{Content: "<p>body</p>"}
		assert.NoError(t, a.Validate())
	})

	t.Run("rejects empty content", func(t *testing.T) {
		t.Parallel()
		a := &kindlebeam.Article{Title: "Title Only", URL: "https://example.com"}
		err := a.Validate()
		assert.Equal(t, kindlebeam.EINVALID, kindlebeam.ErrorCode(err))
		assert.Equal(t, "no content provided", kindlebeam.ErrorMessage(err))
	})
}

func TestArticle_DisplayTitle(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "A Title", (&kindlebeam.Article{Title: "A Title"}).DisplayTitle())
	assert.Equal(t, "Untitled", (&kindlebeam.Article{}).DisplayTitle())
	assert.Equal(t, "Untitled", (&kindlebeam.Article{Title: "   "}).DisplayTitle())
}

func TestDelivery_Validate(t *testing.T) {
	t.Parallel()

	t.Run("accepts sent and failed statuses", func(t *testing.T) {
		t.Parallel()
		for _, status := range []string{kindlebeam.DeliverySent, kindlebeam.DeliveryFailed} {
			d := &kindlebeam.Delivery{URL: "https://example.com", Status: status}
			assert.NoError(t, d.Validate())
		}
	})

	t.Run("rejects unknown statuses", func(t *testing.T) {
		t.Parallel()
		d := &kindlebeam.Delivery{URL: "https://example.com", Status: "pending"}
		assert.Equal(t, kindlebeam.EINVALID, kindlebeam.ErrorCode(d.Validate()))
	})

	t.Run("requires a url or title", func(t *testing.T) {
		t.Parallel()
		d := &kindlebeam.Delivery{Status: kindlebeam.DeliverySent}
		assert.Equal(t, kindlebeam.EINVALID, kindlebeam.ErrorCode(d.Validate()))
	})
}

func TestHashContent(t *testing.T) {
	t.Parallel()

	a := kindlebeam.HashContent("<p>one</p>")
	b := kindlebeam.HashContent("<p>one</p>")
	c := kindlebeam.HashContent("<p>two</p>")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 16)
}
