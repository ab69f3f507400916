// Package upload publishes exported artifacts to storage.
//
// Streams (.vgv), player documents (.html) and videos (.mp4) are put under
// a key in a Store. Two stores are provided: S3Store for S3 compatible
// object storage and DiskStore for a local directory.
//
//	client := upload.NewS3Client(upload.S3Config{Region: "eu-west-1"})
//	store := upload.NewS3Store(client, "renders", upload.WithPrefix("vgv/"))
//	loc, err := upload.File(ctx, store, "out.mp4", "")
package upload
