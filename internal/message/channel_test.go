// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package message

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelExclusiveVisibility(t *testing.T) {
	tests := []struct {
		name  string
		steps func(c *Channel)
		want  Visible
	}{
		{"initially hidden", func(c *Channel) {}, VisibleNone},
		{"banner", func(c *Channel) { c.ShowInfo("working") }, VisibleBanner},
		{"download replaces banner", func(c *Channel) {
			c.ShowError("bad")
			c.ShowDownload("a.pdf", "output/a.pdf")
		}, VisibleDownload},
		{"banner replaces download", func(c *Channel) {
			c.ShowDownload("a.pdf", "output/a.pdf")
			c.ShowInfo("again")
		}, VisibleBanner},
		{"modal replaces banner", func(c *Channel) {
			c.ShowInfo("working")
			c.ShowModal()
		}, VisibleModal},
		{"hide all leaves modal", func(c *Channel) {
			c.ShowModal()
			c.HideAll()
		}, VisibleModal},
		{"hide modal", func(c *Channel) {
			c.ShowModal()
			c.HideModal()
		}, VisibleNone},
		{"hide modal keeps banner", func(c *Channel) {
			c.ShowInfo("x")
			c.HideModal()
		}, VisibleBanner},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewChannel()
			tt.steps(c)
			st := c.State()
			assert.Equal(t, tt.want, st.Visible)
			assert.Equal(t, tt.want == VisibleBanner, st.Banner != nil)
			assert.Equal(t, tt.want == VisibleDownload, st.Download != nil)
		})
	}
}

func TestChannelBannerContent(t *testing.T) {
	c := NewChannel()
	c.ShowError("File \"x.txt\" is not a supported type")
	st := c.State()
	require.NotNil(t, st.Banner)
	assert.Equal(t, KindError, st.Banner.Kind)
	assert.Contains(t, st.Banner.Text, "x.txt")

	c.ShowDownload("merged_document_1.pdf", "/downloads/tok")
	st = c.State()
	require.NotNil(t, st.Download)
	assert.Equal(t, "merged_document_1.pdf", st.Download.FileName)
	assert.Equal(t, "/downloads/tok", st.Download.Ref)
}

func TestChannelEvictsModal(t *testing.T) {
	c := NewChannel()
	evictions := 0
	c.OnModalEvicted(func() { evictions++ })

	c.ShowInfo("no modal yet")
	assert.Equal(t, 0, evictions)

	c.ShowModal()
	c.ShowInfo("busy")
	assert.Equal(t, 1, evictions)

	c.ShowModal()
	c.ShowDownload("a.pdf", "ref")
	assert.Equal(t, 2, evictions)
}
