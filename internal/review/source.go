package review

import "context"

// FileStatus is the change status of a file within a review request.
type FileStatus string

const (
	FileAdded    FileStatus = "added"
	FileModified FileStatus = "modified"
	FileRemoved  FileStatus = "removed"
	FileRenamed  FileStatus = "renamed"
)

// FileMeta describes one changed file as reported by the collaborator.
type FileMeta struct {
	Filename  string     `json:"filename"`
	Status    FileStatus `json:"status"`
	Additions int        `json:"additions"`
	Deletions int        `json:"deletions"`
	Patch     string     `json:"patch,omitempty"`
}

// Source is the external collaborator supplying the file list and content of
// a review request. Implementations wrap a repository host API or a local
// checkout; the engine itself performs no I/O beyond this interface.
type Source interface {
	// ListChangedFiles returns metadata for every file changed in the
	// review request.
	ListChangedFiles(ctx context.Context, prID int) ([]FileMeta, error)

	// ResolveHeadRef returns the ref (head SHA) at which file content
	// should be fetched.
	ResolveHeadRef(ctx context.Context, prID int) (string, error)

	// FetchFileContent returns the content of path at ref. A missing file
	// is reported as ErrContentNotFound, not as a failure.
	FetchFileContent(ctx context.Context, path, ref string) (string, error)
}
