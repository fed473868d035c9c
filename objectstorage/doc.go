// Package objectstorage is a Go client for the Utho Object Storage REST API.
//
// It covers bucket lifecycle, access-key management, bucket policy and
// permissions, and file/directory operations (upload, delete, list and
// sharable download links). Every operation is a single authenticated HTTP
// request; failures are normalized into [*Error] before they reach the caller.
//
// # Quick Start
//
//	import "github.com/timmy/uthos/objectstorage"
//
//	client, err := objectstorage.New(objectstorage.ClientConfig{
//	    Token: os.Getenv("UTHO_TOKEN"),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Upload into a directory. The "path" form field is only sent when the
//	// target is not the bucket root.
//	err = client.UploadFile(ctx, "innoida", "my-bucket",
//	    objectstorage.Bytes{Data: []byte("Hello, World!")},
//	    "documents/hello.txt",
//	)
//
//	// Time-bounded download link.
//	url, err := client.GetSharableURL(ctx, "innoida", "my-bucket", "documents/hello.txt", "1d")
//
// # Authentication
//
// Either a bearer token (Authorization header) or an access/secret key pair
// (X-Access-Key and X-Secret-Key headers). When both are configured the token
// wins. The headers are derived once in [New] and reused for every request.
//
// # Errors
//
//   - [*ConfigurationError]: returned by [New], no client is produced.
//   - [*InvalidArgumentError]: bad arguments, returned before any network call.
//   - [*Error]: every remote failure, with Kind [KindTransport] (timeouts,
//     DNS, refused connections) or [KindAPI] (non-2xx responses).
//
// Use [IsNotFound], [IsTimeout] and [StatusCode] to inspect them.
//
// # Caveats
//
// ListObjects is known to be unreliable on the remote side: it can return an
// empty list while the bucket holds objects. Never treat an empty listing as
// proof of absence.
package objectstorage
