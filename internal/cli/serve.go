package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/matzehuels/topdag/pkg/archive"
	pkgerrors "github.com/matzehuels/topdag/pkg/errors"
	"github.com/matzehuels/topdag/pkg/labels"
	"github.com/matzehuels/topdag/pkg/topdag"
	"github.com/matzehuels/topdag/pkg/toptree"
	"github.com/matzehuels/topdag/pkg/tree"
)

// maxRequestBody bounds uploaded XML documents.
const maxRequestBody = 64 << 20

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the compressor over HTTP",
		Long: `Expose compression as an HTTP API.

POST an XML document to /compress and receive the archive bytes back;
POST an archive to /decompress for the inverse. GET /healthz reports
liveness.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	return cmd
}

func runServe(cmd *cobra.Command, addr string) error {
	logger := loggerFromContext(cmd.Context())

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Post("/compress", handleCompress)
	r.Post("/decompress", handleDecompress)

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-cmd.Context().Done()
		srv.Close()
	}()

	logger.Infof("listening on %s", addr)
	err := srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// apiError is the JSON error envelope.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	code := string(pkgerrors.GetCode(err))
	if code == "" {
		code = string(pkgerrors.ErrCodeInternal)
	}
	json.NewEncoder(w).Encode(apiError{Code: code, Message: pkgerrors.UserMessage(err)})
}

func handleCompress(w http.ResponseWriter, req *http.Request) {
	body := http.MaxBytesReader(w, req.Body, maxRequestBody)

	t := tree.New(0)
	lab := labels.New()
	if err := tree.ParseXML(body, t, lab); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	origNodes := t.NumNodes()

	top := toptree.New(t.NumNodes(), lab)
	if err := toptree.Construct(t, top, toptree.Options{}); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	dag := topdag.NewDag(top.NumClusters())
	topdag.Build(top, dag)

	var buf bytes.Buffer
	if _, err := archive.Write(&buf, dag, lab); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("X-Topdag-Nodes", fmt.Sprint(dag.NumNodes()))
	w.Header().Set("X-Topdag-Orig-Nodes", fmt.Sprint(origNodes))
	w.Write(buf.Bytes())
}

func handleDecompress(w http.ResponseWriter, req *http.Request) {
	body := http.MaxBytesReader(w, req.Body, maxRequestBody)

	dag, lab, err := archive.Read(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	top, err := topdag.Unpack(dag)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	t, outLab, err := toptree.Unpack(top, lab)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	w.Header().Set("Content-Type", "application/xml")
	if err := tree.WriteXML(w, t, outLab); err != nil {
		// Headers are already sent, so the error cannot be reported; the
		// response is left truncated.
		return
	}
}
