package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bookhaven/database"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

const registerBody = `{"firstname":"A","lastname":"B","username":"ab","email":"a@b.com","password":"pw"}`

func registerRouter(mt *mtest.T) *gin.Engine {
	gin.SetMode(gin.TestMode)
	store := &db.Store{Client: mt.Client, Books: mt.Coll, Users: mt.Coll, Reviews: mt.Coll}
	ct := New(store, nil, []byte("testsecret"))
	r := gin.New()
	r.POST("/register", ct.Register)
	return r
}

func postRegister(r *gin.Engine) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(registerBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func insertCount(mt *mtest.T) int {
	count := 0
	for _, evt := range mt.GetAllStartedEvents() {
		if evt.CommandName == "insert" {
			count++
		}
	}
	return count
}

func TestRegister(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	// A failed duplicate lookup must not be read as "no such user": creating
	// the account anyway could mint a duplicate.
	mt.Run("lookup failure aborts with 500", func(mt *mtest.T) {
		r := registerRouter(mt)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    11600,
			Name:    "InterruptedAtShutdown",
			Message: "server is shutting down",
		}))

		w := postRegister(r)
		assert.Equal(mt, http.StatusInternalServerError, w.Code)
		assert.Zero(mt, insertCount(mt))
	})

	mt.Run("existing user conflicts", func(mt *mtest.T) {
		r := registerRouter(mt)
		ns := mt.DB.Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: primitive.NewObjectID()},
			{Key: "username", Value: "ab"},
			{Key: "email", Value: "a@b.com"},
		}))

		w := postRegister(r)
		assert.Equal(mt, http.StatusConflict, w.Code)
		assert.Zero(mt, insertCount(mt))
	})

	mt.Run("clean miss creates the account", func(mt *mtest.T) {
		r := registerRouter(mt)
		ns := mt.DB.Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch),
			mtest.CreateSuccessResponse(),
		)

		w := postRegister(r)
		assert.Equal(mt, http.StatusOK, w.Code)
		assert.Equal(mt, 1, insertCount(mt))
	})
}
