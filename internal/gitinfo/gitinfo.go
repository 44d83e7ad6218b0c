// Package gitinfo annotates pastes with the version-control state of the
// directory they were published from.
package gitinfo

import (
	"fmt"

	"github.com/go-git/go-git/v5"
)

// Info describes the repository state around a pasted file.
type Info struct {
	Commit string // abbreviated HEAD commit hash
	Dirty  bool   // worktree has uncommitted changes
}

// Origin formats the info as a short provenance note for footers.
func (i Info) Origin() string {
	if i.Commit == "" {
		return ""
	}
	if i.Dirty {
		return fmt.Sprintf("commit %s, modified", i.Commit)
	}
	return "commit " + i.Commit
}

// Describe inspects the repository containing dir. The annotation is best
// effort: directories outside any repository, empty repositories, and
// lookup failures all report ok=false rather than an error.
func Describe(dir string) (Info, bool) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return Info{}, false
	}

	head, err := repo.Head()
	if err != nil {
		return Info{}, false
	}

	info := Info{Commit: head.Hash().String()[:8]}
	if wt, err := repo.Worktree(); err == nil {
		if status, err := wt.Status(); err == nil {
			info.Dirty = !status.IsClean()
		}
	}
	return info, true
}
