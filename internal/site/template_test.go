package site

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTemplate_Validate(t *testing.T) {
	assert.NoError(t, Template("https://example.com/?s={name}").Validate(true, false))
	assert.NoError(t, Template("https://example.com/page/{page}").Validate(false, true))
	assert.NoError(t, Template("https://example.com/page/{page}/?s={name}").Validate(true, true))

	assert.Error(t, Template("").Validate(false, false))
	assert.Error(t, Template("   ").Validate(false, false))
	assert.Error(t, Template("https://example.com/").Validate(true, false))
	assert.Error(t, Template("https://example.com/?s={name}").Validate(true, true))
	assert.Error(t, Template("/relative/{page}").Validate(false, true))
}

func TestTemplate_Build(t *testing.T) {
	tmpl := Template("https://example.com/page/{page}/?s={name}")
	assert.Equal(t, "https://example.com/page/3/?s=Lian+Hussein", tmpl.Build("Lian Hussein", 3))
}

func TestTemplate_WithName_Encodes(t *testing.T) {
	tmpl := Template("https://example.com/?search={name}")
	assert.Equal(t, "https://example.com/?search=Lian+Hussein", tmpl.WithName("Lian Hussein"))
	assert.Equal(t, "https://example.com/?search=a%26b", tmpl.WithName("a&b"))
}

func TestTemplate_Page(t *testing.T) {
	tmpl := Template("https://example.com/martyrs/{page}")
	assert.Equal(t, "https://example.com/martyrs/4", tmpl.Page(4))
	assert.Equal(t, "https://example.com/martyrs/", tmpl.BarePage())
}
