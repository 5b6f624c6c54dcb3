/*
Package httpserver serves the portal API.

# Routes

  - GET /api/fetch-blobs?name=<url> resolves the site addressed by the URL
    and returns all of its servable files as JSON.
  - GET /api/fetch-resource?name=<url> returns the one file addressed by the
    URL path, raw, with its recorded headers.
  - /livez, /readyz, /drain and /undrain for orchestration.
  - /debug/pprof when profiling is enabled.

Unknown routes get a JSON 404.

# Status Codes

	400  missing or malformed name parameter
	404  nothing resolves, not a site, or no such file
	503  registry or name service unreachable
	500  anything else; details only in development mode

An empty site is a 200 with an empty data object. Failing files of a
fetch-blobs call are reported in their result entry and never change the
status code.

Metrics for request outcomes are recorded on the collector given to
NewHandler, which the metrics server exposes separately.
*/
package httpserver
