/*
Package api holds the wire types and configuration shared by the portal
server and its clients.

# Endpoints

  - GET /api/fetch-blobs?name=<url> returns every servable file of the site
    addressed by the URL as a JSON FetchBlobsResponse.
  - GET /api/fetch-resource?name=<url> returns the single file addressed by
    the URL path as raw bytes with the headers recorded on chain.

Failures are answered with an ErrorResponse body. The subpackage clients
provides a Go client for both endpoints.
*/
package api
