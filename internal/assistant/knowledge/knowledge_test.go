package knowledge

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoplite/shoplite/api/pkg/models"
)

func testBase(t *testing.T) *Base {
	t.Helper()
	return NewBase([]models.PolicyDoc{
		{ID: "Returns1.1", Category: "Returns", Answer: "30 day return window."},
		{ID: "Returns1.2", Category: "Returns", Answer: "Refunds in 5-7 business days."},
		{ID: "Shipping2.1", Category: "Shipping", Answer: "Standard shipping takes 3-5 days."},
		{ID: "Payment3.1", Category: "Payment", Answer: "We accept cards and PayPal."},
		{ID: "Security4.1", Category: "Security", Answer: "Data handling follows GDPR."},
		{ID: "Account5.1", Category: "Account", Answer: "Register with your email."},
	})
}

func TestFindRelevant(t *testing.T) {
	kb := testBase(t)

	t.Run("keyword picks category", func(t *testing.T) {
		docs := kb.FindRelevant("how do I get a refund for this?")
		require.Len(t, docs, 2)
		assert.Equal(t, "Returns1.1", docs[0].ID)
		assert.Equal(t, "Returns1.2", docs[1].ID)
	})

	t.Run("first matching category wins", func(t *testing.T) {
		// Both "return" and "shipping" appear; the returns rule is earlier.
		docs := kb.FindRelevant("can I return an item with free shipping?")
		require.NotEmpty(t, docs)
		for _, d := range docs {
			assert.Equal(t, "Returns", d.Category)
		}
	})

	t.Run("category match is case insensitive", func(t *testing.T) {
		docs := kb.FindRelevant("is PAYPAL supported?")
		require.Len(t, docs, 1)
		assert.Equal(t, "Payment3.1", docs[0].ID)
	})

	t.Run("generic phrasing serves the fallback subset", func(t *testing.T) {
		docs := kb.FindRelevant("what is your policy on stuff")
		require.Len(t, docs, 3)
		assert.Equal(t, "Returns1.1", docs[0].ID)
		assert.Equal(t, "Shipping2.1", docs[2].ID)
	})

	t.Run("no match yields nil", func(t *testing.T) {
		assert.Nil(t, kb.FindRelevant("tell me about llamas"))
	})
}

func TestLoad(t *testing.T) {
	writeFile := func(t *testing.T, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "knowledge.json")
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}

	t.Run("valid file", func(t *testing.T) {
		path := writeFile(t, `[{"id":"Returns1.1","category":"Returns","question":"q","answer":"a"}]`)
		kb, err := Load(path)
		require.NoError(t, err)
		assert.Len(t, kb.Docs(), 1)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
		assert.Error(t, err)
	})

	t.Run("empty document set", func(t *testing.T) {
		_, err := Load(writeFile(t, `[]`))
		assert.Error(t, err)
	})

	t.Run("document missing required fields", func(t *testing.T) {
		_, err := Load(writeFile(t, `[{"id":"Returns1.1","category":"Returns"}]`))
		assert.Error(t, err)
	})
}
