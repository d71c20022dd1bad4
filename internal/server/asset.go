package server

import (
	"io"

	"github.com/gin-gonic/gin"
	assetdomain "github.com/smallbiznis/eventory/internal/asset/domain"
)

const (
	imageFormField = "image"
	maxImageUpload = 5 << 20
)

// -------- Assets --------

func (s *Server) CreateAsset(c *gin.Context) {
	var req assetdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	asset, err := s.assetSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, "asset.create", "asset", asset.ID.String(), map[string]any{"sku": asset.SKU})
	respondCreated(c, "asset created", asset)
}

func (s *Server) ListAssets(c *gin.Context) {
	var req assetdomain.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	assets, meta, err := s.assetSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondList(c, "assets fetched", assets, meta)
}

func (s *Server) GetAsset(c *gin.Context) {
	asset, err := s.assetSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, "asset fetched", asset)
}

func (s *Server) UpdateAsset(c *gin.Context) {
	var req assetdomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	asset, err := s.assetSvc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, "asset updated", asset)
}

// DeactivateAsset backs DELETE; assets stay referenced by past orders.
func (s *Server) DeactivateAsset(c *gin.Context) {
	asset, err := s.assetSvc.Deactivate(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, "asset.deactivate", "asset", asset.ID.String(), nil)
	respondOK(c, "asset deactivated", asset)
}

func (s *Server) UploadAssetImage(c *gin.Context) {
	header, err := c.FormFile(imageFormField)
	if err != nil {
		AbortWithError(c, newValidationError(imageFormField, "required", "image file is required"))
		return
	}
	if header.Size > maxImageUpload {
		AbortWithError(c, assetdomain.ErrInvalidImage)
		return
	}

	file, err := header.Open()
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	defer file.Close()

	body, err := io.ReadAll(io.LimitReader(file, maxImageUpload+1))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	asset, err := s.assetSvc.UploadImage(c.Request.Context(), c.Param("id"), assetdomain.UploadImageRequest{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        body,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, "asset image uploaded", asset)
}

// -------- Collections --------

func (s *Server) CreateCollection(c *gin.Context) {
	var req assetdomain.CreateCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	collection, err := s.collectionSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondCreated(c, "collection created", collection)
}

func (s *Server) ListCollections(c *gin.Context) {
	var req assetdomain.ListCollectionRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	collections, meta, err := s.collectionSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondList(c, "collections fetched", collections, meta)
}

func (s *Server) GetCollection(c *gin.Context) {
	collection, err := s.collectionSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, "collection fetched", collection)
}

func (s *Server) UpdateCollection(c *gin.Context) {
	var req assetdomain.UpdateCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	collection, err := s.collectionSvc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, "collection updated", collection)
}

func (s *Server) ReplaceCollectionItems(c *gin.Context) {
	var req assetdomain.ReplaceItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	collection, err := s.collectionSvc.ReplaceItems(c.Request.Context(), c.Param("id"), req.Items)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, "collection items replaced", collection)
}

func (s *Server) DeleteCollection(c *gin.Context) {
	id := c.Param("id")
	if err := s.collectionSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, "collection.delete", "collection", id, nil)
	respondOK(c, "collection deleted", nil)
}
