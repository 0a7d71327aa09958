package config

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Options)
		wantErr bool
	}{
		{"defaults", func(o *Options) {}, false},
		{"zero blank lines", func(o *Options) { o.BlankLines = 0 }, false},
		{"negative workers", func(o *Options) { o.Workers = -1 }, true},
		{"negative blank lines", func(o *Options) { o.BlankLines = -2 }, true},
		{"empty pairing", func(o *Options) { o.Pairing = "" }, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o := NewOptions()
			tc.mutate(o)
			err := o.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBindFlagsTranslation(t *testing.T) {
	o := NewOptions()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	o.BindFlags(fs)
	require.NoError(t, fs.Parse([]string{"--pairing", " = ", "--blank-lines", "2", "--workers", "3"}))

	w := o.WriteOptions()
	assert.Equal(t, " = ", w.Pairing)
	assert.Equal(t, 2, w.BlankLines)
	assert.Equal(t, 3, o.ReaderOptions().Workers)
}
