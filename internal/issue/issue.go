// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	SettingsNotFoundId Id = iota + 1
	SettingsParseErrorId
	TokenNotConfiguredId
)

type MarkdownMsg string

type HttpLink string

// Issue is a known failure with rendered markdown guidance attached.
type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // documentation links shown under "See also"
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 {
		extraMd += "\n\n## See also\n"
		for _, link := range i.docLinks {
			extraMd += "- " + string(link) + "\n"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	settingsNotFoundIssue = &Issue{
		id: SettingsNotFoundId,
		mdMsg: `
# No settings file found!

We searched for a settings file but couldn't find one in the expected
locations.

## Search locations (in order of precedence):
1. The path given with --config
2. ./.zenodo-deposit-settings.toml
3. ~/.zenodo-deposit-settings.toml

## Things you can try:
- Create ~/.zenodo-deposit-settings.toml with your tokens:
~~~toml
[zenodo]
ZENODO_ACCESS_TOKEN = "your-production-token"
ZENODO_SANDBOX_ACCESS_TOKEN = "your-sandbox-token"
~~~

- Or export a token for this shell only:
~~~
$ export ZENODO_ACCESS_TOKEN=your-token
~~~`,
		docLinks: []HttpLink{
			"https://developers.zenodo.org/#authentication",
		},
	}

	settingsParseErrorIssue = &Issue{
		id: SettingsParseErrorId,
		mdMsg: `
# Failed to parse the settings file!

Your settings file contains invalid TOML.

## Common issues:
- Missing quotes around token values
- A missing [zenodo] section header
- Unbalanced brackets

## Example of a valid settings file:
~~~toml
[zenodo]
ZENODO_ACCESS_TOKEN = "your-production-token"
ZENODO_SANDBOX_ACCESS_TOKEN = "your-sandbox-token"
~~~`,
	}

	tokenNotConfiguredIssue = &Issue{
		id: TokenNotConfiguredId,
		mdMsg: `
# Access token not configured!

The token for the selected environment is missing, blank, or still the
"Change me" placeholder. The token value is never printed here.

## Things you can try:
- Create a token at your Zenodo account's Applications page
- Put it in ~/.zenodo-deposit-settings.toml under [zenodo]
- Or export it:
~~~
$ export ZENODO_ACCESS_TOKEN=your-token        # production
$ export ZENODO_SANDBOX_ACCESS_TOKEN=your-token # with --sandbox
~~~

- Check which environment you are targeting: --sandbox uses
  ZENODO_SANDBOX_ACCESS_TOKEN, --production uses ZENODO_ACCESS_TOKEN.`,
		docLinks: []HttpLink{
			"https://developers.zenodo.org/#authentication",
		},
	}

	issues = map[Id]*Issue{
		settingsNotFoundIssue.Id():   settingsNotFoundIssue,
		settingsParseErrorIssue.Id(): settingsParseErrorIssue,
		tokenNotConfiguredIssue.Id(): tokenNotConfiguredIssue,
	}
)

func Values() []*Issue {
	return maps.Values(issues)
}

func Get(id Id) *Issue {
	return issues[id]
}
