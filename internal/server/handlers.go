package server

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/alnah/go-formalize/internal/align"
	"github.com/alnah/go-formalize/internal/csvio"
	"github.com/alnah/go-formalize/internal/examples"
	"github.com/alnah/go-formalize/internal/session"
)

type translateRequest struct {
	Text string `json:"text"`
}

type translateResponse struct {
	Raw    string      `json:"raw"`
	Pairs  align.Pairs `json:"pairs"`
	Joined string      `json:"joined"`
}

type editRequest struct {
	Translated string `json:"translated"`
}

type importResponse struct {
	Imported int          `json:"imported"`
	Total    int          `json:"total"`
	Skipped  []csvio.Skip `json:"skipped"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "examples": s.examples.Len()})
}

// translate runs one request. The result is only stored and returned when
// no newer request started meanwhile.
func (s *Server) translate(c *gin.Context) {
	var req translateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		fail(c, errBlankText)
		return
	}

	ticket := s.session.Begin()
	res, err := s.translator.Translate(c.Request.Context(), req.Text, s.examples.All())
	if err != nil {
		if !s.session.Fail(ticket, err) {
			fail(c, ErrSuperseded)
			return
		}
		fail(c, err)
		return
	}
	if !s.session.Commit(ticket, session.Result{Raw: res.Raw, Pairs: res.Pairs}) {
		fail(c, ErrSuperseded)
		return
	}

	c.JSON(http.StatusOK, translateResponse{
		Raw:    res.Raw,
		Pairs:  res.Pairs,
		Joined: res.Pairs.JoinedText(res.Raw),
	})
}

func (s *Server) listPairs(c *gin.Context) {
	snap := s.session.Snapshot()
	if snap.Pairs == nil {
		snap.Pairs = align.Pairs{}
	}
	c.JSON(http.StatusOK, gin.H{
		"raw":    snap.Raw,
		"pairs":  snap.Pairs,
		"joined": s.session.JoinedText(),
		"error":  snap.Error,
		"busy":   snap.Busy,
	})
}

func (s *Server) editPair(c *gin.Context) {
	var req editRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id := c.Param("id")
	if err := s.session.Edit(id, req.Translated); err != nil {
		fail(c, err)
		return
	}
	p, _ := s.session.Pair(id)
	c.JSON(http.StatusOK, p)
}

func (s *Server) promotePair(c *gin.Context) {
	p, ok := s.session.Pair(c.Param("id"))
	if !ok {
		fail(c, fmt.Errorf("pair %q: %w", c.Param("id"), align.ErrPairNotFound))
		return
	}
	if err := s.examples.AddPair(c.Request.Context(), p); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"added": 1, "total": s.examples.Len()})
}

func (s *Server) promoteAllPairs(c *gin.Context) {
	n, err := s.examples.AddPairs(c.Request.Context(), s.session.Pairs())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"added": n, "total": s.examples.Len()})
}

func (s *Server) listExamples(c *gin.Context) {
	exs := s.examples.All()
	if exs == nil {
		exs = []examples.Example{}
	}
	c.JSON(http.StatusOK, gin.H{"examples": exs})
}

func (s *Server) addExample(c *gin.Context) {
	ex, ok := bindExample(c)
	if !ok {
		return
	}
	if err := s.examples.Add(c.Request.Context(), ex); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"index": s.examples.Len() - 1, "example": ex})
}

func (s *Server) updateExample(c *gin.Context) {
	index, ok := bindIndex(c)
	if !ok {
		return
	}
	ex, ok := bindExample(c)
	if !ok {
		return
	}
	if err := s.examples.Update(c.Request.Context(), index, ex); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"index": index, "example": ex})
}

func (s *Server) deleteExample(c *gin.Context) {
	index, ok := bindIndex(c)
	if !ok {
		return
	}
	if err := s.examples.Delete(c.Request.Context(), index); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) clearExamples(c *gin.Context) {
	if err := s.examples.Clear(c.Request.Context()); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// importExamples reads CSV from a multipart "file" field or the raw body.
// The corpus is replaced unless ?append=1.
func (s *Server) importExamples(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportBytes)

	var src io.Reader = c.Request.Body
	if c.ContentType() == "multipart/form-data" {
		fh, err := c.FormFile("file")
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "missing CSV file field"})
			return
		}
		f, err := fh.Open()
		if err != nil {
			fail(c, fmt.Errorf("open upload: %w", err))
			return
		}
		defer f.Close()
		src = f
	}

	res, err := csvio.Parse(src)
	if err != nil {
		fail(c, err)
		return
	}

	appendMode, _ := strconv.ParseBool(c.DefaultQuery("append", "false"))
	if appendMode {
		err = s.examples.Append(c.Request.Context(), res.Examples)
	} else {
		err = s.examples.Replace(c.Request.Context(), res.Examples)
	}
	if err != nil {
		fail(c, err)
		return
	}

	skipped := res.Skipped
	if skipped == nil {
		skipped = []csvio.Skip{}
	}
	c.JSON(http.StatusOK, importResponse{
		Imported: len(res.Examples),
		Total:    s.examples.Len(),
		Skipped:  skipped,
	})
}

func (s *Server) exportExamples(c *gin.Context) {
	var buf bytes.Buffer
	if err := csvio.Write(&buf, s.examples.All()); err != nil {
		fail(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", csvio.FileName))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func bindExample(c *gin.Context) (examples.Example, bool) {
	var body examples.Example
	if err := c.ShouldBindJSON(&body); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return examples.Example{}, false
	}
	ex, err := examples.New(body.Cantonese, body.TraditionalChinese)
	if err != nil {
		fail(c, err)
		return examples.Example{}, false
	}
	return ex, true
}

func bindIndex(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		fail(c, fmt.Errorf("%w: %q", errBadIndex, c.Param("index")))
		return 0, false
	}
	return index, true
}
