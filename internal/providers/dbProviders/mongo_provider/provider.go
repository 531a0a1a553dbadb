package mongo_provider

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/open-ingest/eventgate/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CDbName = "eventgate"
const CDbRecords = "records"
const CDbParameters = "parameters"

const CEnvDbName = "EVENTGATE_DBNAME"

var mLog = log.New(os.Stdout, "MONGO:  ", log.Ldate|log.Ltime)

type MongoProvider struct {
	DbUrl  string
	DbName string
	client *mongo.Client
	dbInit bool

	gateDb    *mongo.Database
	recordCol *mongo.Collection
	paramCol  *mongo.Collection
}

// recordDoc wraps a stored record with its Mongo object id. The object id's
// insertion ordering is what the scan's continuation tokens are built on.
type recordDoc struct {
	DocId              primitive.ObjectID `bson:"_id,omitempty"`
	model.IngestRecord `bson:",inline"`
}

// parameterDoc is one named value in the parameters collection (the parameter
// store role: shared token secret and similar small configuration secrets).
type parameterDoc struct {
	Name  string `bson:"name"`
	Value string `bson:"value"`
}

/*
Open connects to Mongo at the URL specified and if necessary initializes the
records database. If dbName is empty the EVENTGATE_DBNAME environment variable
is checked before falling back to the default. If successful a MongoProvider
handle is returned otherwise an error.
*/
func Open(mongoUrl string, dbName string) (*MongoProvider, error) {
	ctx := context.Background()

	if dbName == "" {
		envName, defined := os.LookupEnv(CEnvDbName)
		if defined {
			dbName = envName
		} else {
			dbName = CDbName
		}
	}

	if mongoUrl == "" {
		mongoUrl = "mongodb://localhost:27017/"
		mLog.Printf("Defaulting Mongo Database to local: %s", mongoUrl)
	}

	opts := options.Client().ApplyURI(mongoUrl)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}

	// Do a ping test to see that the database is actually there
	if err := client.Ping(ctx, nil); err != nil {
		mLog.Printf("Error connecting to: %s.", mongoUrl)
		return nil, err
	}

	m := MongoProvider{
		DbName: dbName,
		DbUrl:  mongoUrl,
		client: client,
	}

	m.initialize(ctx)

	return &m, nil
}

func (m *MongoProvider) initialize(ctx context.Context) {
	m.gateDb = m.client.Database(m.DbName)
	m.recordCol = m.gateDb.Collection(CDbRecords)
	m.paramCol = m.gateDb.Collection(CDbParameters)

	indexTs := mongo.IndexModel{
		Keys: bson.D{
			{Key: "timestamp", Value: 1},
		},
	}
	_, err := m.recordCol.Indexes().CreateOne(ctx, indexTs)
	if err != nil {
		mLog.Println(err.Error())
	}

	indexName := mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	_, err = m.paramCol.Indexes().CreateOne(ctx, indexName)
	if err != nil {
		mLog.Println(err.Error())
	}
	m.dbInit = true
}

func (m *MongoProvider) Name() string {
	return m.DbName
}

// Database exposes the underlying database so the GridFS blob provider can
// share it.
func (m *MongoProvider) Database() *mongo.Database {
	return m.gateDb
}

func (m *MongoProvider) Check() error {
	return m.client.Ping(context.Background(), nil)
}

func (m *MongoProvider) Close() error {
	return m.client.Disconnect(context.Background())
}

func (m *MongoProvider) ResetDb(initialize bool) error {
	err := m.gateDb.Drop(context.TODO())
	m.dbInit = false

	if initialize {
		m.initialize(context.TODO())
	}
	return err
}

func (m *MongoProvider) PutRecord(record *model.IngestRecord) error {
	if !m.dbInit {
		return errors.New("mongo provider not initialized")
	}
	doc := recordDoc{IngestRecord: *record}
	_, err := m.recordCol.InsertOne(context.TODO(), &doc)
	return err
}

/*
ScanRecords pages through records whose timestamp falls inside window. Paging is
ordered by object id: the continuation token is the hex object id of the last
record of the previous page, and each page resumes strictly after it. An empty
NextToken in the result means the scan is exhausted.
*/
func (m *MongoProvider) ScanRecords(window model.ScanWindow, pageToken string, limit int32) (*model.RecordPage, error) {
	if !m.dbInit {
		return nil, errors.New("mongo provider not initialized")
	}
	if limit <= 0 {
		limit = 100
	}

	filter := bson.M{
		"timestamp": bson.M{"$gte": window.Start, "$lte": window.End},
	}
	if pageToken != "" {
		lastId, err := primitive.ObjectIDFromHex(pageToken)
		if err != nil {
			return nil, errors.New("invalid continuation token: " + err.Error())
		}
		filter["_id"] = bson.M{"$gt": lastId}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := m.recordCol.Find(context.TODO(), filter, opts)
	if err != nil {
		return nil, err
	}
	var docs []recordDoc
	if err = cursor.All(context.TODO(), &docs); err != nil {
		return nil, err
	}

	page := model.RecordPage{
		Records: make([]model.IngestRecord, len(docs)),
	}
	for i, doc := range docs {
		page.Records[i] = doc.IngestRecord
	}

	// A full page may have more behind it; hand back a token and let the
	// consumer discover exhaustion on the next (possibly empty) page.
	if int32(len(docs)) == limit {
		page.NextToken = docs[len(docs)-1].DocId.Hex()
	}
	return &page, nil
}

func (m *MongoProvider) CountRecords() (int64, error) {
	if !m.dbInit {
		return 0, errors.New("mongo provider not initialized")
	}
	return m.recordCol.CountDocuments(context.TODO(), bson.D{})
}

func (m *MongoProvider) GetSecret(name string) (string, error) {
	filter := bson.D{{Key: "name", Value: name}}
	res := m.paramCol.FindOne(context.TODO(), filter)
	if res.Err() != nil {
		if res.Err() == mongo.ErrNoDocuments {
			return "", errors.New("parameter not found: " + name)
		}
		return "", res.Err()
	}
	var param parameterDoc
	if err := res.Decode(&param); err != nil {
		mLog.Printf("Error parsing parameter %s: %s", name, err.Error())
		return "", err
	}
	return param.Value, nil
}

func (m *MongoProvider) SetSecret(name string, value string) error {
	filter := bson.D{{Key: "name", Value: name}}
	update := bson.M{"$set": parameterDoc{Name: name, Value: value}}
	opts := options.Update().SetUpsert(true)
	_, err := m.paramCol.UpdateOne(context.TODO(), filter, update, opts)
	return err
}
