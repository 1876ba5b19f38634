package media

// Entry describes one child of a listed directory.
type Entry struct {
	Src      string `json:"src"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	IsFile   bool   `json:"isFile"`
}

// ListingPage is one page of a directory listing. An empty Cursor means
// there are no further entries.
type ListingPage struct {
	Directories []string `json:"directories"`
	Files       []Entry  `json:"files"`
	Cursor      string   `json:"cursor,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// MutationResult reports the outcome of a delete.
type MutationResult struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

// ListArgs are the raw listing parameters. Cursor and Limit are taken as
// given by the client and coerced to numbers by List.
type ListArgs struct {
	SearchPath string
	Cursor     string
	Limit      string
}
