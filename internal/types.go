package internal

// FileProvider identifies where a raw export came from.
type FileProvider string

const (
	ProviderLocal FileProvider = "local"
	ProviderGmail FileProvider = "gmail"
	ProviderIMAP  FileProvider = "imap"
)

// File statuses as stored in the files table.
const (
	StatusFetched = "fetched"
	StatusCleaned = "cleaned"
	StatusSkipped = "skipped"
	StatusError   = "error"
)

// FileRow is one tracked raw export: a local file or a fetched mail message.
type FileRow struct {
	ID         int
	Provider   string
	Ref        string
	Name       string
	Sender     string
	ReceivedAt string
	Hash       string
	Status     string
	RawRef     string
	Error      *string
}

type FetchedMailMessage struct {
	Provider   string
	MessageID  string
	Subject    string
	From       string
	ReceivedAt string
	Raw        []byte
}

// CleanStats are the diagnostics one cleaning run reports back to the caller.
type CleanStats struct {
	InputRows       int
	InputColumns    int
	OutputRows      int
	OutputColumns   int
	InterestMatches int
}

// CleanResult is the per-file outcome of a batch run. Err is set when the
// file itself could not be read or parsed; cell-level problems never surface
// here.
type CleanResult struct {
	Name       string
	OutputPath string
	Stats      CleanStats
	Err        error
}
