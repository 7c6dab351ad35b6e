package handler

import (
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"hackreg-backend/entity"
	"hackreg-backend/errs"
	"hackreg-backend/internal/blob"
	"hackreg-backend/log"
	"hackreg-backend/membership"
)

const maxUploadSize = 100 * 1024

type uploadHandler struct {
	cTeams *mongo.Collection
	store  *blob.Store
}

func (h *uploadHandler) Photo(c *gin.Context) {
	h.upload(c, "photos", func(contentType, _ string) bool {
		return strings.HasPrefix(contentType, "image/")
	}, "Photo Uploaded Successfully")
}

func (h *uploadHandler) Resume(c *gin.Context) {
	h.upload(c, "resumes", func(_, name string) bool {
		switch strings.ToLower(filepath.Ext(name)) {
		case ".pdf", ".doc", ".docx":
			return true
		}
		return false
	}, "Resume Uploaded Successfully")
}

// upload stores the file under {prefix}/{email}_{filename} and returns the
// public URL. The URL only becomes part of a member record once a later
// membership write includes it; an upload whose owning write never lands
// leaves an orphaned object.
func (h *uploadHandler) upload(c *gin.Context, prefix string, accept func(contentType, name string) bool, doneMsg string) {
	claims, okc := claimsFrom(c)
	if !okc {
		fail(c, errs.ErrUnauthorized)
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		fail(c, errs.ErrFileRequired)
		return
	}

	if header.Size > maxUploadSize {
		fail(c, errs.ErrFileTooLarge)
		return
	}

	if !accept(header.Header.Get("Content-Type"), header.Filename) {
		fail(c, errs.ErrFileType)
		return
	}

	// uploads for a full team are pointless, the membership write that
	// would reference them is going to be rejected anyway
	if name := c.PostForm("teamName"); name != "" {
		t := &entity.Team{}
		err := h.cTeams.FindOne(c.Request.Context(), bson.M{"team_name": name}).Decode(t)
		if err != nil && err != mongo.ErrNoDocuments {
			log.Logger.Error("database error", zap.Error(err), zap.String("team", name))
			fail(c, errs.ErrDatabase)
			return
		}
		if err == nil && len(t.Members) >= membership.MaxTeamSize {
			if _, mine := membership.Find(t.Members, claims.Email); !mine {
				fail(c, errs.ErrTeamFull)
				return
			}
		}
	}

	f, err := header.Open()
	if err != nil {
		log.Logger.Error("failed opening upload", zap.Error(err))
		fail(c, errs.ErrFileRequired)
		return
	}
	defer f.Close()

	key := prefix + "/" + claims.Email + "_" + filepath.Base(header.Filename)
	if err := h.store.Put(c.Request.Context(), key, header.Header.Get("Content-Type"), f); err != nil {
		log.Logger.Error("blob store error", zap.Error(err), zap.String("key", key))
		fail(c, errs.ErrBlobStore)
		return
	}

	ok(c, doneMsg, gin.H{"url": h.store.PublicURL(key)})
}

func NewUploadHandler(client *mongo.Client, store *blob.Store) *uploadHandler {
	return &uploadHandler{
		cTeams: client.Database("hackreg").Collection("teams"),
		store:  store,
	}
}
