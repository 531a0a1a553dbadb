package gridfs_provider

import (
	"bytes"
	"context"
	"log"
	"os"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CBucketName = "reports"

var bLog = log.New(os.Stdout, "BLOB:   ", log.Ldate|log.Ltime)

// GridFsProvider stores report objects in a GridFS bucket of the same Mongo
// database that holds the records (the object-store role). The object key is
// the GridFS filename; content type and caller metadata ride in the file
// metadata document.
type GridFsProvider struct {
	BucketName string
	bucket     *gridfs.Bucket
}

func Open(db *mongo.Database, bucketName string) (*GridFsProvider, error) {
	if bucketName == "" {
		bucketName = CBucketName
	}
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(bucketName))
	if err != nil {
		return nil, err
	}
	return &GridFsProvider{
		BucketName: bucketName,
		bucket:     bucket,
	}, nil
}

func (g *GridFsProvider) Name() string {
	return g.BucketName
}

/*
PutObject uploads data under key, replacing any prior object with the same key.
GridFS itself versions files by name, so the replace is delete-then-upload; a
failure between the two leaves no object at the key and the caller's run is
reported failed, which matches the write-once report contract.
*/
func (g *GridFsProvider) PutObject(key string, data []byte, contentType string, metadata map[string]string) error {
	if err := g.deleteExisting(key); err != nil {
		return err
	}

	meta := bson.M{"contentType": contentType}
	for k, v := range metadata {
		meta[k] = v
	}
	opts := options.GridFSUpload().SetMetadata(meta)

	_, err := g.bucket.UploadFromStream(key, bytes.NewReader(data), opts)
	return err
}

func (g *GridFsProvider) deleteExisting(key string) error {
	cursor, err := g.bucket.Find(bson.M{"filename": key})
	if err != nil {
		return err
	}
	var files []struct {
		Id primitive.ObjectID `bson:"_id"`
	}
	if err = cursor.All(context.TODO(), &files); err != nil {
		return err
	}
	for _, file := range files {
		if err := g.bucket.Delete(file.Id); err != nil {
			bLog.Printf("Error deleting prior object %s: %s", key, err.Error())
			return err
		}
	}
	return nil
}
