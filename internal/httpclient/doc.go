// Package httpclient builds the shared HTTP client and the request template
// used by every benchmark worker.
//
// # Request Template
//
// [NewRequestTemplate] validates the method and the "Name: Value" header
// strings once, before any network activity, and produces requests on demand:
//
//	tmpl, err := httpclient.NewRequestTemplate(target, "POST", headers, body)
//	if err != nil {
//		return err
//	}
//	req, err := tmpl.Build(ctx)
//
// A JSON content type is assumed when a body is supplied without an explicit
// Content-Type header.
//
// # HTTP Client
//
// [NewClient] returns a client whose idle connection pool is sized to the
// number of workers so that connection reuse never becomes the bottleneck:
//
//	client := httpclient.NewClient(concurrency, 30*time.Second)
package httpclient
