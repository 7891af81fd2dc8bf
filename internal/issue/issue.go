// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Id looks up a rendered issue card.
type Id int

const (
	ConfigLoadFailedId Id = iota + 1
	ChangesetDirMissingId
	EmptyChangesetId
	ChangeNotRegisteredId
	DatasetMissingId
	EncoderNotFoundId
)

// Issue is a pre-written explanation card for a failure a terminal user
// is likely to hit. Cards complement the error value; they never
// replace it.
type Issue struct {
	id    Id
	mdMsg string
}

// Get returns the issue registered under id, nil when unknown.
func Get(id Id) *Issue {
	if i, ok := issues[id]; ok {
		return i
	}
	return nil
}

// Ids returns all registered issue ids in ascending order.
func Ids() []Id {
	ids := maps.Keys(issues)
	slices.Sort(ids)
	return ids
}

// Id returns the issue identifier.
func (i *Issue) Id() Id { return i.id }

// Render returns the card as styled terminal output.
func (i *Issue) Render(stylePath string) (string, error) {
	return render(i.mdMsg, stylePath)
}

// swappable for tests
var render = glamour.Render

var issues = map[Id]*Issue{
	ConfigLoadFailedId: {
		id: ConfigLoadFailedId,
		mdMsg: `
# Configuration could not be loaded

exbuild found a config file but could not parse it.

## Things you can try
- Check the file for TOML syntax errors
- Regenerate a clean one:
~~~
$ exbuild config init
~~~
- See where the file is expected:
~~~
$ exbuild config path
~~~`,
	},

	ChangesetDirMissingId: {
		id: ChangesetDirMissingId,
		mdMsg: `
# No changeset directory

The changeset directory does not exist or is not readable.

## Things you can try
- Point exbuild at the right place:
~~~
$ exbuild build --changeset-dir path/to/changeset
~~~
- Or set ` + "`changeset_dir`" + ` in exbuild.toml`,
	},

	EmptyChangesetId: {
		id: EmptyChangesetId,
		mdMsg: `
# Nothing to build

The changeset directory holds no change manifests
(files named ` + "`<priority>_<id>.toml`" + `).

## Things you can try
- List what exbuild can see:
~~~
$ exbuild changes
~~~
- Check the ` + "`--skip`" + ` list is not excluding everything`,
	},

	ChangeNotRegisteredId: {
		id: ChangeNotRegisteredId,
		mdMsg: `
# Unknown change unit

A manifest names a change id with no compiled-in apply function.

## Things you can try
- Compare manifests against registered units:
~~~
$ exbuild changes
~~~
- Check the manifest file name for typos in the id segment`,
	},

	DatasetMissingId: {
		id: DatasetMissingId,
		mdMsg: `
# Source dataset not found

The exercise dataset checkout configured as ` + "`dataset_dir`" + `
is missing.

## Things you can try
- Fetch the dataset dependency, then re-run the build
- Point ` + "`dataset_dir`" + ` at an existing checkout`,
	},

	EncoderNotFoundId: {
		id: EncoderNotFoundId,
		mdMsg: `
# Image encoder not found

The AVIF encoder binary is not on PATH.

## Things you can try
- Install avifenc (libavif tools)
- Set ` + "`convert.encoder`" + ` to the full binary path`,
	},
}
