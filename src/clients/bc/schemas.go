package bc

// ODataEnvelope is the source API's response wrapper: a page of records plus
// an optional link to the next page. Pagination terminates when the link is
// absent or empty.
type ODataEnvelope[T any] struct {
	Value    []T    `json:"value"`
	NextLink string `json:"@odata.nextLink"`
}
