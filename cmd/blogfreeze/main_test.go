package main

import (
	"bytes"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/blogfreeze/cmd/blogfreeze/commands"
)

type exitCode int

func TestNewParser_Help(t *testing.T) {
	var out bytes.Buffer
	parser, err := newParser(&commands.CLI{},
		kong.Writers(&out, &out),
		kong.Exit(func(code int) { panic(exitCode(code)) }))
	require.NoError(t, err)

	defer func() {
		require.Equal(t, exitCode(0), recover())
		help := out.String()
		assert.Contains(t, help, "blogfreeze")
		for _, cmd := range []string{"serve", "build", "posts", "init"} {
			assert.Contains(t, help, cmd)
		}
	}()
	_, _ = parser.Parse([]string{"--help"})
	t.Fatal("expected --help to exit")
}

func TestNewParser_DefaultsToServe(t *testing.T) {
	parser, err := newParser(&commands.CLI{})
	require.NoError(t, err)
	ctx, err := parser.Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, "serve", ctx.Command())
}
