package driver

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/csweichel/assetidx/pkg/meta"
	"github.com/shurcooL/githubv4"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

// NewGitHub produces a driver for the tree of a GitHub repository at a revision.
func NewGitHub(ctx context.Context, ghToken, owner, repo, revision string) (*GitHub, error) {
	src := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: ghToken},
	)
	httpClient := oauth2.NewClient(context.Background(), src)

	res := &GitHub{
		Client:   githubv4.NewClient(httpClient),
		Owner:    owner,
		Repo:     repo,
		Revision: revision,
		children: make(map[string][]meta.RawEntry),
	}
	err := res.fetchTimestamp(ctx)
	if err != nil {
		return nil, err
	}
	return res, nil
}

var _ Driver = (*GitHub)(nil)

// GitHub lists a repository tree. All entries carry the committed date
// of the revision as their timestamp.
type GitHub struct {
	Client   *githubv4.Client
	Owner    string
	Repo     string
	Revision string

	timestamp int64
	children  map[string][]meta.RawEntry
	mu        sync.RWMutex
}

func (n *GitHub) vars(expr string) map[string]interface{} {
	return map[string]interface{}{
		"owner": githubv4.String(n.Owner),
		"name":  githubv4.String(n.Repo),
		"expr":  githubv4.String(expr),
	}
}

func (n *GitHub) fetchTimestamp(ctx context.Context) error {
	var query struct {
		Repository struct {
			Object struct {
				Commit struct {
					CommittedDate githubv4.DateTime
				} `graphql:"... on Commit"`
			} `graphql:"object(expression: $expr)"`
		} `graphql:"repository(owner: $owner, name: $name)"`
	}
	err := n.Client.Query(ctx, &query, n.vars(n.Revision))
	if err != nil {
		return fmt.Errorf("cannot fetch revision %s: %w", n.Revision, err)
	}
	n.timestamp = query.Repository.Object.Commit.CommittedDate.Unix()
	return nil
}

func (n *GitHub) fetch(ctx context.Context, dir string) ([]meta.RawEntry, error) {
	n.mu.RLock()
	children, ok := n.children[dir]
	n.mu.RUnlock()
	if ok {
		return children, nil
	}

	var query struct {
		Repository struct {
			Object struct {
				Tree struct {
					Entries []struct {
						Type   githubv4.String
						Path   githubv4.String
						Object struct {
							Blob struct {
								ByteSize githubv4.Int
							} `graphql:"... on Blob"`
						}
					}
				} `graphql:"... on Tree"`
			} `graphql:"object(expression: $expr)"`
		} `graphql:"repository(owner: $owner, name: $name)"`
	}

	log.WithField("dir", dir).Debug("fetching entries")
	t0 := time.Now()
	err := n.Client.Query(ctx, &query, n.vars(n.Revision+":"+dir))
	if err != nil {
		return nil, err
	}
	log.WithField("duration", time.Since(t0)).Debug("done fetching entries")

	children = make([]meta.RawEntry, 0, len(query.Repository.Object.Tree.Entries))
	for _, e := range query.Repository.Object.Tree.Entries {
		attrs := map[string]interface{}{
			"path":      string(e.Path),
			"timestamp": n.timestamp,
		}
		switch e.Type {
		case "tree":
			attrs["type"] = "dir"
		case "blob":
			attrs["type"] = "file"
			attrs["size"] = int64(e.Object.Blob.ByteSize)
		default:
			// submodules have no contents of their own
			continue
		}

		child, err := meta.Adapt(attrs)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}

	n.mu.Lock()
	n.children[dir] = children
	n.mu.Unlock()
	return children, nil
}

// ListContents implements Driver
func (n *GitHub) ListContents(ctx context.Context, dir string, recursive bool) ([]meta.RawEntry, error) {
	var (
		res   []meta.RawEntry
		queue = []string{cleanPath(dir)}
	)
	for len(queue) > 0 {
		d := queue[0]
		queue = queue[1:]

		children, err := n.fetch(ctx, d)
		if err != nil {
			return nil, err
		}
		for _, c := range children {
			res = append(res, c)
			if recursive && c.Type() == "dir" {
				queue = append(queue, c.Path())
			}
		}
	}
	sortEntries(res)
	return res, nil
}

func (n *GitHub) stat(ctx context.Context, p string) (typename string, size int64, err error) {
	p = cleanPath(p)
	if p == "" {
		return "Tree", 0, nil
	}

	var query struct {
		Repository struct {
			Object struct {
				Typename githubv4.String `graphql:"__typename"`
				Blob     struct {
					ByteSize githubv4.Int
				} `graphql:"... on Blob"`
			} `graphql:"object(expression: $expr)"`
		} `graphql:"repository(owner: $owner, name: $name)"`
	}
	err = n.Client.Query(ctx, &query, n.vars(n.Revision+":"+p))
	if err != nil {
		return "", 0, err
	}
	obj := query.Repository.Object
	return string(obj.Typename), int64(obj.Blob.ByteSize), nil
}

// DirectoryExists implements meta.Stater
func (n *GitHub) DirectoryExists(ctx context.Context, p string) (bool, error) {
	tn, _, err := n.stat(ctx, p)
	return tn == "Tree", err
}

// Has implements meta.Stater
func (n *GitHub) Has(ctx context.Context, p string) (bool, error) {
	tn, _, err := n.stat(ctx, p)
	return tn == "Tree" || tn == "Blob", err
}

// LastModified implements meta.Stater
func (n *GitHub) LastModified(ctx context.Context, p string) (int64, error) {
	return n.timestamp, nil
}

// FileSize implements meta.Stater
func (n *GitHub) FileSize(ctx context.Context, p string) (int64, error) {
	_, sze, err := n.stat(ctx, p)
	return sze, err
}
