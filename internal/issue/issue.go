// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"slices"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
)

type (
	// Id identifies a known issue.
	Id int

	// MarkdownMsg is the Markdown body of an issue.
	MarkdownMsg string

	// HttpLink is a documentation or external URL.
	HttpLink string

	// Issue is a piece of remediation guidance shown next to an error.
	Issue struct {
		id       Id
		mdMsg    MarkdownMsg
		docLinks []HttpLink
		extLinks []HttpLink
	}
)

const (
	InvalidRootId Id = iota + 1
	TargetNotADirectoryId
	InitializerParseErrorId
	ModuleNotLinkedId
	ModuleInitFailedId
	DuplicateMarkerId
	TranslationsLoadFailedId
	ConfigLoadFailedId
	HostRegistryMissingId
)

var (
	render = glamour.Render

	invalidRootIssue = &Issue{
		id: InvalidRootId,
		mdMsg: `
# Addon root could not be resolved!

The addon root must be an existing directory (or a file inside one) that is
not the filesystem root.

## Things you can try:
- Point ` + "`--root`" + ` at the directory holding your addon packages:
~~~
$ addonproc scan --root ./my_addon operators panels
~~~
- Or set ` + "`root`" + ` in your addonproc.cue`,
	}

	targetNotADirectoryIssue = &Issue{
		id: TargetNotADirectoryId,
		mdMsg: `
# Target is not a directory!

Each discovery target is resolved relative to the addon root and must be an
existing directory. Nothing was discovered for this run.

## Things you can try:
- Check the spelling of the target name
- List the addon root to see which subpackages exist
- Remove the target from the ` + "`targets`" + ` list in your configuration`,
	}

	initializerParseErrorIssue = &Issue{
		id: InitializerParseErrorId,
		mdMsg: `
# Failed to read a package initializer!

Package initializers (` + "`addon.cue`" + ` by default) may only declare an
ignore list. Anything else is rejected.

## Example:
~~~cue
ignore: ["_legacy", "experimental.draft"]
~~~

## Things you can try:
- Validate every initializer at once:
~~~
$ addonproc check
~~~`,
	}

	moduleNotLinkedIssue = &Issue{
		id: ModuleNotLinkedId,
		mdMsg: `
# Module was discovered but is not linked!

A source file was found on disk, but no package called ` + "`addon.Provide`" + `
for its module path. The file is skipped.

## Things you can try:
- Add an ` + "`init`" + ` function to the package:
~~~go
func init() {
	addon.Provide("hello.operators.render", addon.Classes(RenderOperator{}))
}
~~~
- Make sure the package is imported (blank import) by your binary`,
	}

	moduleInitFailedIssue = &Issue{
		id: ModuleInitFailedId,
		mdMsg: `
# Module initialization failed!

The module's ` + "`Init`" + ` returned an error. It is skipped and the failure is
cached, so it will not be retried in this process.

## Things you can try:
- Run with ` + "`--verbose`" + ` to see the full error chain
- Enable ` + "`strict`" + ` to turn this warning into a hard failure`,
	}

	duplicateMarkerIssue = &Issue{
		id: DuplicateMarkerId,
		mdMsg: `
# Marker applied twice!

A class may be disabled once and given a priority once. Applying the same
marker again is a definition-time error.

## Things you can try:
- Search the package for repeated ` + "`addon.Disable`" + ` or ` + "`addon.SetPriority`" + ` calls`,
	}

	translationsLoadFailedIssue = &Issue{
		id: TranslationsLoadFailedId,
		mdMsg: `
# Failed to load translations!

Translation tables may be written in CUE, YAML or TOML.

## Example (YAML):
~~~yaml
ja_JP:
  - context: "*"
    message: "Render"
    translation: "レンダー"
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

## Things you can try:
- Show where addonproc looks for its configuration:
~~~
$ addonproc config path
~~~
- Write a fresh default file:
~~~
$ addonproc config init
~~~`,
	}

	hostRegistryMissingIssue = &Issue{
		id: HostRegistryMissingId,
		mdMsg: `
# No host registry!

Reloading requires a host class registry to re-register against.

## Things you can try:
- Pass a registry when constructing the manager, or use ` + "`addonproc plan`" + `
  which records operations in memory`,
	}

	issues = map[Id]*Issue{
		invalidRootIssue.Id():            invalidRootIssue,
		targetNotADirectoryIssue.Id():    targetNotADirectoryIssue,
		initializerParseErrorIssue.Id():  initializerParseErrorIssue,
		moduleNotLinkedIssue.Id():        moduleNotLinkedIssue,
		moduleInitFailedIssue.Id():       moduleInitFailedIssue,
		duplicateMarkerIssue.Id():        duplicateMarkerIssue,
		translationsLoadFailedIssue.Id(): translationsLoadFailedIssue,
		configLoadFailedIssue.Id():       configLoadFailedIssue,
		hostRegistryMissingIssue.Id():    hostRegistryMissingIssue,
	}
)

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the issue as styled terminal output.
func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n## See also:\n"
		for _, link := range i.docLinks {
			extraMd += "- [" + string(link) + "](" + string(link) + ")\n"
		}
		for _, link := range i.extLinks {
			extraMd += "- [" + string(link) + "](" + string(link) + ")\n"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

// Values returns every known issue ordered by Id.
func Values() []*Issue {
	ids := slices.Sorted(maps.Keys(issues))
	out := make([]*Issue, 0, len(ids))
	for _, id := range ids {
		out = append(out, issues[id])
	}
	return out
}

// Get returns the issue for id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}
