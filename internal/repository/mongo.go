package repository

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsoncodec"
	"go.mongodb.org/mongo-driver/bson/bsonrw"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"kasir/internal/domain"
)

// MongoStore is the persistent backend, selected when MONGO_URL is set.
// Money is stored as Decimal128 via a registry codec so domain structs
// round-trip without per-collection document types.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database

	// standalone Mongo has no multi-document transactions; a single-writer
	// lock keeps stock check + decrement consistent within one process,
	// mirroring the in-memory TxManager
	writeMu sync.Mutex
}

func NewMongoStore(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	opts := options.Client().ApplyURI(uri).SetRegistry(decimalRegistry())

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}
	return &MongoStore{client: client, db: client.Database(dbName)}, nil
}

func (m *MongoStore) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func decimalRegistry() *bsoncodec.Registry {
	tDecimal := reflect.TypeOf(decimal.Decimal{})
	reg := bson.NewRegistry()
	reg.RegisterTypeEncoder(tDecimal, bsoncodec.ValueEncoderFunc(
		func(_ bsoncodec.EncodeContext, vw bsonrw.ValueWriter, val reflect.Value) error {
			d128, err := primitive.ParseDecimal128(val.Interface().(decimal.Decimal).String())
			if err != nil {
				return err
			}
			return vw.WriteDecimal128(d128)
		}))
	reg.RegisterTypeDecoder(tDecimal, bsoncodec.ValueDecoderFunc(
		func(_ bsoncodec.DecodeContext, vr bsonrw.ValueReader, val reflect.Value) error {
			d128, err := vr.ReadDecimal128()
			if err != nil {
				return err
			}
			dec, err := decimal.NewFromString(d128.String())
			if err != nil {
				return err
			}
			val.Set(reflect.ValueOf(dec))
			return nil
		}))
	return reg
}

func mapMongoErr(err error, op string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

// MongoProducts implements ProductRepository
type MongoProducts struct{ store *MongoStore }

func NewMongoProducts(store *MongoStore) *MongoProducts { return &MongoProducts{store: store} }

var _ ProductRepository = (*MongoProducts)(nil)

func (r *MongoProducts) col() *mongo.Collection { return r.store.db.Collection("products") }

func (r *MongoProducts) Create(ctx context.Context, p *domain.Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	if _, err := r.col().InsertOne(ctx, p); err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

func (r *MongoProducts) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	if err := r.col().FindOne(ctx, bson.M{"id": id}).Decode(&p); err != nil {
		return nil, mapMongoErr(err, "failed to get product")
	}
	return &p, nil
}

func (r *MongoProducts) GetBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	var p domain.Product
	if err := r.col().FindOne(ctx, bson.M{"sku": sku}).Decode(&p); err != nil {
		return nil, mapMongoErr(err, "failed to get product by sku")
	}
	return &p, nil
}

func (r *MongoProducts) Update(ctx context.Context, p *domain.Product) error {
	p.UpdatedAt = time.Now().UTC()
	res, err := r.col().UpdateOne(ctx, bson.M{"id": p.ID}, bson.M{"$set": p})
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoProducts) Delete(ctx context.Context, id string) error {
	res, err := r.col().DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoProducts) List(ctx context.Context, f ProductFilter) ([]domain.Product, error) {
	filter := bson.M{}
	if f.NameSubstring != "" {
		filter["name"] = bson.M{"$regex": f.NameSubstring, "$options": "i"}
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	cur, err := r.col().Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer cur.Close(ctx)
	out := make([]domain.Product, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return out, nil
}

func (r *MongoProducts) ListLowStock(ctx context.Context) ([]domain.Product, error) {
	filter := bson.M{"$expr": bson.M{"$lte": bson.A{"$stock", "$min_stock"}}}
	cur, err := r.col().Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list low-stock products: %w", err)
	}
	defer cur.Close(ctx)
	out := make([]domain.Product, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return out, nil
}

func (r *MongoProducts) Count(ctx context.Context) (int, error) {
	n, err := r.col().CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return int(n), nil
}

// MongoCustomerTypes implements CustomerTypeRepository
type MongoCustomerTypes struct{ store *MongoStore }

func NewMongoCustomerTypes(store *MongoStore) *MongoCustomerTypes {
	return &MongoCustomerTypes{store: store}
}

var _ CustomerTypeRepository = (*MongoCustomerTypes)(nil)

func (r *MongoCustomerTypes) col() *mongo.Collection { return r.store.db.Collection("customer_types") }

func (r *MongoCustomerTypes) Create(ctx context.Context, t *domain.CustomerType) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.CreatedAt = time.Now().UTC()
	if _, err := r.col().InsertOne(ctx, t); err != nil {
		return fmt.Errorf("failed to insert customer type: %w", err)
	}
	return nil
}

func (r *MongoCustomerTypes) GetByName(ctx context.Context, name string) (*domain.CustomerType, error) {
	var t domain.CustomerType
	if err := r.col().FindOne(ctx, bson.M{"name": name}).Decode(&t); err != nil {
		return nil, mapMongoErr(err, "failed to get customer type")
	}
	return &t, nil
}

func (r *MongoCustomerTypes) List(ctx context.Context) ([]domain.CustomerType, error) {
	cur, err := r.col().Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list customer types: %w", err)
	}
	defer cur.Close(ctx)
	out := make([]domain.CustomerType, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode customer types: %w", err)
	}
	return out, nil
}

// MongoUsers implements UserRepository
type MongoUsers struct{ store *MongoStore }

func NewMongoUsers(store *MongoStore) *MongoUsers { return &MongoUsers{store: store} }

var _ UserRepository = (*MongoUsers)(nil)

func (r *MongoUsers) col() *mongo.Collection { return r.store.db.Collection("users") }

func (r *MongoUsers) Create(ctx context.Context, u *domain.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = time.Now().UTC()
	if _, err := r.col().InsertOne(ctx, u); err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (r *MongoUsers) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	if err := r.col().FindOne(ctx, bson.M{"id": id}).Decode(&u); err != nil {
		return nil, mapMongoErr(err, "failed to get user")
	}
	return &u, nil
}

func (r *MongoUsers) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var u domain.User
	if err := r.col().FindOne(ctx, bson.M{"username": username}).Decode(&u); err != nil {
		return nil, mapMongoErr(err, "failed to get user by username")
	}
	return &u, nil
}

// MongoTransactions implements TransactionRepository
type MongoTransactions struct{ store *MongoStore }

func NewMongoTransactions(store *MongoStore) *MongoTransactions {
	return &MongoTransactions{store: store}
}

var _ TransactionRepository = (*MongoTransactions)(nil)

func (r *MongoTransactions) col() *mongo.Collection { return r.store.db.Collection("transactions") }

func (r *MongoTransactions) Create(ctx context.Context, t *domain.Transaction) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	if _, err := r.col().InsertOne(ctx, t); err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

func (r *MongoTransactions) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	var t domain.Transaction
	if err := r.col().FindOne(ctx, bson.M{"id": id}).Decode(&t); err != nil {
		return nil, mapMongoErr(err, "failed to get transaction")
	}
	return &t, nil
}

func (r *MongoTransactions) List(ctx context.Context, limit int) ([]domain.Transaction, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := r.col().Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer cur.Close(ctx)
	out := make([]domain.Transaction, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode transactions: %w", err)
	}
	return out, nil
}

func (r *MongoTransactions) ListByDateRange(ctx context.Context, from, to time.Time) ([]domain.Transaction, error) {
	filter := bson.M{"created_at": bson.M{"$gte": from, "$lt": to}}
	cur, err := r.col().Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions by range: %w", err)
	}
	defer cur.Close(ctx)
	out := make([]domain.Transaction, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode transactions: %w", err)
	}
	return out, nil
}

func (r *MongoTransactions) Count(ctx context.Context) (int, error) {
	n, err := r.col().CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return int(n), nil
}

// MongoTx serializes writers; see MongoStore.writeMu
type MongoTx struct{ store *MongoStore }

func NewMongoTx(store *MongoStore) *MongoTx { return &MongoTx{store: store} }

var _ TxManager = (*MongoTx)(nil)

func (tx *MongoTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	tx.store.writeMu.Lock()
	defer tx.store.writeMu.Unlock()
	return fn(ctx)
}
