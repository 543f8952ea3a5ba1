// Package file stores receipt images in S3 or an S3-compatible service.
//
// Objects are addressed by key. ReceiptKey builds a per-user key and
// DetectImage checks that an upload is an image type the vision parser
// accepts before anything is written.
//
//	store, err := file.NewS3Storage(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	key := file.ReceiptKey(userID, contentType)
//	err = store.Put(ctx, key, contentType, data)
//
// MemoryStorage serves development and tests.
package file
