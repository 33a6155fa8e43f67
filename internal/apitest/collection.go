package apitest

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
)

// collection keeps records in insertion order. Callers hold Server.mu.
type collection struct {
	required []string
	order    []string
	records  map[string]map[string]any
}

func newCollection(required ...string) *collection {
	return &collection{
		required: required,
		records:  make(map[string]map[string]any),
	}
}

func (c *collection) put(id string, record map[string]any) {
	if _, exists := c.records[id]; !exists {
		c.order = append(c.order, id)
	}
	c.records[id] = record
}

func (c *collection) remove(id string) bool {
	if _, exists := c.records[id]; !exists {
		return false
	}
	delete(c.records, id)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

func (c *collection) list() []map[string]any {
	out := make([]map[string]any, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, copyRecord(c.records[id]))
	}
	return out
}

func (c *collection) missing(body map[string]any) string {
	for _, field := range c.required {
		v, ok := body[field]
		if !ok || v == nil || v == "" {
			return field
		}
	}
	return ""
}

func copyRecord(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func withTimestamps(id string, fields map[string]any) map[string]any {
	now := time.Now().UTC().Format(time.RFC3339)
	record := copyRecord(fields)
	record["id"] = id
	if _, ok := record["created_at"]; !ok {
		record["created_at"] = now
	}
	record["updated_at"] = now
	return record
}

func (s *Server) mountCollection(g *gin.RouterGroup, name, prefix string, slash bool) {
	suffix := ""
	if slash {
		suffix = "/"
	}

	g.GET(prefix+suffix, s.listHandler(name))
	g.POST(prefix+suffix, s.createHandler(name))
	g.POST(prefix+"/bulk-delete"+suffix, s.bulkDeleteHandler(name))
	g.GET(prefix+"/:id"+suffix, s.getHandler(name))
	g.PUT(prefix+"/:id"+suffix, s.updateHandler(name))
	g.DELETE(prefix+"/:id"+suffix, s.deleteHandler(name))
}

func (s *Server) listHandler(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		records := s.resources[name].list()
		s.mu.Unlock()
		c.JSON(http.StatusOK, records)
	}
}

func (s *Server) getHandler(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		record, ok := s.resources[name].records[c.Param("id")]
		if ok {
			record = copyRecord(record)
		}
		s.mu.Unlock()

		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"message": "not found"})
			return
		}
		c.JSON(http.StatusOK, record)
	}
}

func (s *Server) createHandler(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid JSON body"})
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		coll := s.resources[name]
		if field := coll.missing(body); field != "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": field + " is required"})
			return
		}

		id := ulid.Make().String()
		record := withTimestamps(id, body)
		coll.put(id, record)
		c.JSON(http.StatusCreated, record)
	}
}

func (s *Server) updateHandler(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid JSON body"})
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		coll := s.resources[name]
		id := c.Param("id")
		record, ok := coll.records[id]
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"message": "not found"})
			return
		}

		updated := copyRecord(record)
		for k, v := range body {
			if k == "id" || k == "created_at" {
				continue
			}
			updated[k] = v
		}
		updated = withTimestamps(id, updated)
		coll.put(id, updated)
		c.JSON(http.StatusOK, updated)
	}
}

func (s *Server) deleteHandler(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		ok := s.resources[name].remove(c.Param("id"))
		s.mu.Unlock()

		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"message": "not found"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

type bulkDeleteBody struct {
	IDs []string `json:"ids" binding:"required"`
}

func (s *Server) bulkDeleteHandler(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body bulkDeleteBody
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "ids are required"})
			return
		}

		s.mu.Lock()
		deleted := 0
		for _, id := range body.IDs {
			if s.resources[name].remove(id) {
				deleted++
			}
		}
		s.mu.Unlock()

		c.JSON(http.StatusOK, gin.H{"deleted": deleted})
	}
}
