/*
Package clients provides a Go client for the portal HTTP API.

# Example Usage

	client := clients.NewPortalClient("http://127.0.0.1:5000", nil)

	site, err := client.FetchBlobs(ctx, "https://demo.wal.app/")
	if err != nil {
	    var apiErr *clients.APIError
	    if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
	        // the URL does not lead to a site
	    }
	}

	for name, file := range site.Data.Results {
	    fmt.Println(name, *file.Size)
	}
*/
package clients
