package api

// Route paths served by the portal.
const (
	FetchBlobsPath    = "/api/fetch-blobs"
	FetchResourcePath = "/api/fetch-resource"

	// NameParam carries the full site URL to resolve.
	NameParam = "name"
)

// Response messages.
const (
	MessageFetched   = "Successfully fetched data"
	MessageEmptySite = "Portal found, but it contains no blobs."
)

// BlobResult is one file of a fetched site. Failed entries carry Error and
// null BlobID and Content.
type BlobResult struct {
	BlobID  *string `json:"blob_id"`
	Content *string `json:"content"`

	// Size is the content length in bytes.
	Size *int `json:"size,omitempty"`

	Error string `json:"error,omitempty"`
}

// FetchBlobsData is the payload of a successful fetch. It is empty when the
// site resolved but holds no resources.
type FetchBlobsData struct {
	Results   map[string]BlobResult `json:"results,omitempty"`
	ObjectID  string                `json:"object_id,omitempty"`
	TimeStamp string                `json:"time_stamp,omitempty"`
	Network   string                `json:"network,omitempty"`
}

// FetchBlobsResponse is returned by the fetch-blobs endpoint with status 200.
type FetchBlobsResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Data    FetchBlobsData `json:"data"`
}

// ErrorResponse is the body of every non-200 response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
