package placeholder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScan(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "clean",
			text: "<package><metadata><id>Contoso</id></metadata></package>",
		},
		{
			name: "lower case",
			text: "<package><id>__replace</id></package>",
			want: []string{"__replace"},
		},
		{
			name: "upper case",
			text: "<package><id>__REPLACE</id></package>",
			want: []string{"__REPLACE"},
		},
		{
			name: "substring",
			text: "<package><tags>Tag1 other</tags></package>",
			want: []string{"Tag1 other"},
		},
		{
			name: "one finding per node",
			text: "<package><tags>tag1 space_separated __replace</tags></package>",
			want: []string{"tag1 space_separated __replace"},
		},
		{
			name: "each node separately",
			text: "<package><id>$id$__replace</id><tags>Space_Separated</tags></package>",
			want: []string{"$id$__replace", "Space_Separated"},
		},
		{
			name: "cdata",
			text: "<package><notes><![CDATA[__replace]]></notes></package>",
			want: []string{"<![CDATA[__replace]]>"},
		},
		{
			name: "attributes and comments ignored",
			text: `<package><!-- __replace --><dependency id="__replace" /></package>`,
		},
		{
			name: "element names ignored",
			text: "<tag1><__replace/></tag1>",
		},
		{
			name: "kept before syntax error",
			text: "<package><id>__replace</id><version>",
			want: []string{"__replace"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Scan(tt.text)
			require.Len(t, got, len(tt.want))
			for i, f := range got {
				assert.Equal(t, Message, f.Message)
				assert.Equal(t, tt.want[i], tt.text[f.Start:f.End])
			}
		})
	}
}

func TestScan_Offsets(t *testing.T) {
	t.Parallel()

	text := "<package>\n  <description>  please __replace me  </description>\n</package>"
	got := Scan(text)

	require.Len(t, got, 1)
	assert.Equal(t, 25, got[0].Start)
	assert.Equal(t, 48, got[0].End)
	assert.Equal(t, "  please __replace me  ", text[got[0].Start:got[0].End])
}
