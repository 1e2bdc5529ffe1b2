// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseToolID(t *testing.T) {
	tests := []struct {
		in     string
		want   ToolID
		wantOK bool
	}{
		{"merge", ToolMerge, true},
		{" Protect ", ToolProtect, true},
		{"WORD", ToolWord, true},
		{"rotate", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseToolID(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToolWording(t *testing.T) {
	assert.Equal(t, "convert", ToolWord.Verb())
	assert.Equal(t, "split", ToolSplit.Verb())
	assert.Equal(t, "Merged", ToolMerge.Past())
	assert.Equal(t, "Converted", ToolWord.Past())
}

func TestDefaultTools(t *testing.T) {
	tools := DefaultTools(false, "no runtime.")
	assert.Len(t, tools, len(AllTools))

	merge := tools[ToolMerge]
	assert.True(t, merge.Multi)
	assert.Equal(t, 2, merge.MinSelection())
	assert.Equal(t, 1, tools[ToolSplit].MinSelection())

	assert.True(t, tools[ToolEdit].RequiresSecondaryInput)
	assert.True(t, tools[ToolProtect].RequiresSecondaryInput)
	assert.False(t, tools[ToolCompress].RequiresSecondaryInput)

	word := tools[ToolWord]
	assert.True(t, word.ForceDisabled)
	assert.Equal(t, "no runtime.", word.DisabledReason)
	assert.True(t, word.Allows(MIMEDocx))
	assert.False(t, word.Allows(MIMEPDF))
	assert.Equal(t, "msword or vnd.openxmlformats-officedocument.wordprocessingml.document", word.ExpectedTypes())
	assert.Equal(t, "pdf", merge.ExpectedTypes())

	assert.False(t, DefaultTools(true, "")[ToolWord].ForceDisabled)
}

func TestMIMETypeByName(t *testing.T) {
	tests := map[string]string{
		"a.pdf":           MIMEPDF,
		"Scan.PDF":        MIMEPDF,
		"letter.doc":      MIMEDoc,
		"dir/report.docx": MIMEDocx,
		"pages.zip":       MIMEZip,
		"notes.txt":       "",
		"noext":           "",
	}
	for name, want := range tests {
		assert.Equal(t, want, MIMETypeByName(name), name)
	}
}
