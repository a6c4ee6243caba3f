// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

type Id int

const (
	FileNotFoundId Id = iota + 1
	ModuleNotFoundId
	VFSMismatchId
	UnsupportedExtensionId
	LoadDepthExceededId
	PrefixCollisionId
	CompileErrorId
	ScriptFailedId
	BytecodeFormatId
	NativeLinkId
	ConfigLoadFailedId
	InvalidBundleId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink
	extLinks []HttpLink // external links that might be useful for the user
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

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n"
		extraMd += "## See also\n"
		for _, link := range i.docLinks {
			extraMd += "- <" + string(link) + ">\n"
		}
		for _, link := range i.extLinks {
			extraMd += "- <" + string(link) + ">\n"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	fileNotFoundIssue = &Issue{
		id: FileNotFoundId,
		mdMsg: `
# File not found!

The file you asked requireplus to run or load does not exist.

## Things you can try:
- Check the spelling of the path
- Relative paths are resolved against the current working directory
- Use an absolute path when running from another directory`,
	}

	moduleNotFoundIssue = &Issue{
		id: ModuleNotFoundId,
		mdMsg: `
# Cannot load such file!

No entry of the search path provides the requested feature under any enabled
extension.

## Things you can try:
- Print the effective search path:
~~~
$ requireplus path
~~~

- Add a directory or bundle to the search path:
~~~
$ requireplus -I ./lib require mylib
$ export REQUIREPLUSLIB=/opt/shlib:/opt/bundles/net.zip
~~~

- See which candidate would be picked without running it:
~~~
$ requireplus resolve mylib
~~~

- Files at or above the load size limit are ignored. Raise it with
  ` + "`--loadsize-max`" + ` if the module is large.`,
		extLinks: []HttpLink{"https://docs.ruby-lang.org/en/master/Kernel.html#method-i-require"},
	}

	vfsMismatchIssue = &Issue{
		id: VFSMismatchId,
		mdMsg: `
# Cannot infer base path for this caller!

` + "`require_relative`" + ` resolves features against the location of the calling
script, but the caller does not belong to any entry of the search path.

## Things you can try:
- Load the calling script through ` + "`require`" + ` so that it has a search path identity
- Add the caller's directory to the search path with ` + "`-I`" + `
- Use ` + "`load`" + ` with an explicit path instead`,
	}

	unsupportedExtensionIssue = &Issue{
		id: UnsupportedExtensionId,
		mdMsg: `
# Unsupported file extension!

` + "`load`" + ` only executes source files whose extension matches the configured
source extensions.

## Things you can try:
- Rename the file to use the source extension (` + "`.sh`" + ` by default)
- Add the extension in your config file:
~~~cue
extensions: source: [".sh", ".bash"]
~~~`,
	}

	loadDepthExceededIssue = &Issue{
		id: LoadDepthExceededId,
		mdMsg: `
# Nested loads went too deep!

A module is being loaded again before its first load finished. This usually
means a file requires itself, directly or through a cycle of other modules.

## Things you can try:
- Run with ` + "`--verbose`" + ` to see the chain of loads
- Move shared definitions into a separate module that does not require its users`,
	}

	prefixCollisionIssue = &Issue{
		id: PrefixCollisionId,
		mdMsg: `
# Search path prefix collision!

Two different providers report the same prefix. Signatures built from them
would collide, so the second one was refused.

## Things you can try:
- Give every bundle a distinct ` + "`name`" + ` in its ` + "`bundle.toml`" + `
- Remove the duplicate entry from ` + "`search_path`" + ` or ` + "`REQUIREPLUSLIB`",
	}

	compileErrorIssue = &Issue{
		id: CompileErrorId,
		mdMsg: `
# Failed to compile script!

The module was found but its source could not be parsed.

## Things you can try:
- Check the reported line and column
- Verify the script with a POSIX shell:
~~~
$ sh -n path/to/module.sh
~~~`,
	}

	scriptFailedIssue = &Issue{
		id: ScriptFailedId,
		mdMsg: `
# Script execution failed!

A loaded module exited with a non-zero status. The module is not recorded as
loaded, so requiring it again runs it again.

## Things you can try:
- Run the module directly to see its output:
~~~
$ requireplus run path/to/module.sh
~~~

- Run with ` + "`--verbose`" + ` to see which module failed`,
	}

	bytecodeFormatIssue = &Issue{
		id: BytecodeFormatId,
		mdMsg: `
# Invalid bytecode file!

The precompiled file has a wrong size, identifier or format version.

## Things you can try:
- Recompile it from source with the current requireplus:
~~~
$ requireplus compile module.sh -o module.shc
~~~`,
	}

	nativeLinkIssue = &Issue{
		id: NativeLinkId,
		mdMsg: `
# Failed to link native extension!

The WebAssembly module could not be compiled, instantiated or initialized.

## Things you can try:
- Export an init function named after the file: ` + "`rp_<name>_init`" + `
- Or build it as a WASI reactor exporting ` + "`_initialize`" + `
- Check that every imported host function is provided`,
		extLinks: []HttpLink{"https://wazero.io/languages/"},
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The configuration file could not be read or does not match the schema.

## Things you can try:
- Show the configuration requireplus would use:
~~~
$ requireplus config show
~~~

- Validate a file explicitly:
~~~
$ requireplus config validate ./config.cue
~~~

- Write a fresh default file:
~~~
$ requireplus config init
~~~`,
	}

	invalidBundleIssue = &Issue{
		id: InvalidBundleId,
		mdMsg: `
# Invalid bundle!

The zip bundle could not be opened or its ` + "`bundle.toml`" + ` manifest is invalid.

## Things you can try:
- Manifest names start with a letter and contain only letters, digits, ` + "`_`" + ` and ` + "`-`" + `
- Repack the bundle:
~~~
$ requireplus bundle pack ./lib --name mylib
~~~`,
	}

	issues = map[Id]*Issue{
		fileNotFoundIssue.Id():         fileNotFoundIssue,
		moduleNotFoundIssue.Id():       moduleNotFoundIssue,
		vfsMismatchIssue.Id():          vfsMismatchIssue,
		unsupportedExtensionIssue.Id(): unsupportedExtensionIssue,
		loadDepthExceededIssue.Id():    loadDepthExceededIssue,
		prefixCollisionIssue.Id():      prefixCollisionIssue,
		compileErrorIssue.Id():         compileErrorIssue,
		scriptFailedIssue.Id():         scriptFailedIssue,
		bytecodeFormatIssue.Id():       bytecodeFormatIssue,
		nativeLinkIssue.Id():           nativeLinkIssue,
		configLoadFailedIssue.Id():     configLoadFailedIssue,
		invalidBundleIssue.Id():        invalidBundleIssue,
	}
)

// Values returns every catalogued issue ordered by Id.
func Values() []*Issue {
	ids := make([]Id, 0, len(issues))
	for id := range issues {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	out := make([]*Issue, 0, len(ids))
	for _, id := range ids {
		out = append(out, issues[id])
	}
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}
