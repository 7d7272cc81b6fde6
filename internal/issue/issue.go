// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

type Id int

const (
	ConfigLoadFailedId Id = iota + 1
	ScanRootInvalidId
	DescriptorMalformedId
	DescriptorWriteFailedId
	DependencyRetainedId
	RuleInvalidId
	PermissionDeniedId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	name     string      // slug accepted by `depshed explain`
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink
	extLinks []HttpLink // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) Name() string {
	return i.name
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

// Title returns the first heading of the message without its trailing "!".
func (i *Issue) Title() string {
	for line := range strings.Lines(string(i.mdMsg)) {
		if heading, ok := strings.CutPrefix(strings.TrimSpace(line), "# "); ok {
			return strings.TrimSuffix(heading, "!")
		}
	}
	return i.name
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

	configLoadFailedIssue = &Issue{
		id:   ConfigLoadFailedId,
		name: "config-load-failed",
		mdMsg: `
# Failed to load configuration!

depshed could not read or validate a configuration file.

## Lookup order
1. The file passed with ` + "`--config`" + `
2. ` + "`.depshed.cue`" + ` in the scan root
3. ` + "`$XDG_CONFIG_HOME/depshed/config.cue`" + `
4. Built-in defaults

## Things you can try:
- Check the error message above for the offending field
- Print the effective configuration:
~~~
$ depshed config show
~~~

- Write a fresh file with every default spelled out:
~~~
$ depshed config init
~~~`,
		extLinks: []HttpLink{"https://cuelang.org/docs/"},
	}

	scanRootInvalidIssue = &Issue{
		id:   ScanRootInvalidId,
		name: "scan-root-invalid",
		mdMsg: `
# Scan root is not usable!

The path given to ` + "`analyze`" + ` or ` + "`prune`" + ` does not exist, is not a
directory, or could not be read.

## Things you can try:
- Pass the repository root explicitly:
~~~
$ depshed analyze /path/to/repository
~~~

- Run from the repository root without arguments:
~~~
$ cd /path/to/repository
$ depshed analyze
~~~`,
	}

	descriptorMalformedIssue = &Issue{
		id:   DescriptorMalformedId,
		name: "descriptor-malformed",
		mdMsg: `
# A build descriptor could not be parsed!

A ` + "`pom.xml`" + ` is not well-formed XML. depshed leaves such files untouched
and reports them as **failed**.

## Things you can try:
- Validate the file with Maven:
~~~
$ mvn -q help:effective-pom
~~~

- Fix the reported line and run ` + "`depshed analyze`" + ` again`,
	}

	descriptorWriteFailedIssue = &Issue{
		id:   DescriptorWriteFailedId,
		name: "descriptor-write-failed",
		mdMsg: `
# A build descriptor could not be updated!

The dependency was removable but the edited descriptor could not be written
back. The original file is left as it was.

## Things you can try:
- Check that the file and its directory are writable
- Make sure no other process holds the file open
- Preview the change without writing anything:
~~~
$ depshed analyze
~~~`,
	}

	dependencyRetainedIssue = &Issue{
		id:   DependencyRetainedId,
		name: "dependency-retained",
		mdMsg: `
# Dependency retained!

At least one source file of the module still uses a type or annotation that
ships in the dependency, so its descriptor entry was kept.

## How a reference is detected
- an import of a blocking type or annotation
- a wildcard import of a blocking package
- a fully qualified name in the code
- a resolved type supplied by the caller

Names that merely share a simple name with a blocking one (for example
` + "`javax.annotation.Nonnull`" + ` from JSR-305) never retain the dependency.

## Things you can try:
- Look at the ` + "`signatures`" + ` and ` + "`artifacts`" + ` listed for the module
- Replace the listed annotations with their non-legacy equivalents
- Gate CI on it:
~~~
$ depshed analyze --fail-on-retain
~~~`,
	}

	ruleInvalidIssue = &Issue{
		id:   RuleInvalidId,
		name: "rule-invalid",
		mdMsg: `
# Invalid dependency rule!

The ` + "`rule`" + ` section of the configuration is inconsistent.

## Common issues:
- A coordinate is not written as ` + "`group:artifact`" + `
- A name is listed both as blocking and as a neutral shim
- A name is not a fully qualified Java name

## Example:
~~~cue
rule: {
	name: "jsr250-common-annotations"
	coordinates: ["javax.annotation:javax.annotation-api"]
	blocking_annotations: ["javax.annotation.PostConstruct"]
	neutral_shims: ["javax.annotation.Nonnull"]
}
~~~`,
	}

	permissionDeniedIssue = &Issue{
		id:   PermissionDeniedId,
		name: "permission-denied",
		mdMsg: `
# Permission denied!

You don't have permission to read part of the source tree or to write a
descriptor.

## Things you can try:
- Check file/directory permissions
- Exclude generated or foreign directories:
~~~cue
exclude: ["generated/", "third_party/"]
~~~

- Run depshed from a checkout you own`,
	}

	issues = map[Id]*Issue{
		configLoadFailedIssue.Id():      configLoadFailedIssue,
		scanRootInvalidIssue.Id():       scanRootInvalidIssue,
		descriptorMalformedIssue.Id():   descriptorMalformedIssue,
		descriptorWriteFailedIssue.Id(): descriptorWriteFailedIssue,
		dependencyRetainedIssue.Id():    dependencyRetainedIssue,
		ruleInvalidIssue.Id():           ruleInvalidIssue,
		permissionDeniedIssue.Id():      permissionDeniedIssue,
	}
)

// Values returns every issue ordered by Id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, i := range issues {
		out = append(out, i)
	}
	slices.SortFunc(out, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}

// Lookup finds an issue by name, case-insensitively.
func Lookup(name string) (*Issue, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, i := range issues {
		if i.name == name {
			return i, true
		}
	}
	return nil, false
}
