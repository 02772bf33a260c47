// Package server exposes the IK solver over HTTP in the wire format, so a
// browser front end or a remote peer can drive the arm without linking the
// solver directly.
package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/san-kum/armkin/internal/ik"
	"github.com/san-kum/armkin/internal/kinematics"
	"github.com/san-kum/armkin/internal/robot"
	"github.com/san-kum/armkin/internal/wire"
)

// Server serves POST /solve and POST /pose against a local solver and
// profile. Solves against a shared chain are serialized by cloning: every
// request works on its own copy, so concurrent requests are safe.
type Server struct {
	solver    *ik.Solver
	extractor *kinematics.Extractor
	chain     kinematics.Chain
	limits    [robot.NumJoints]robot.Limit
}

// New builds a server from a profile and solver tuning.
func New(profile *robot.Profile, params ik.Params) (*Server, error) {
	chain, err := profile.Chain()
	if err != nil {
		return nil, err
	}
	extractor := profile.Extractor()
	return &Server{
		solver:    ik.New(extractor, profile.LimitTable(), params),
		extractor: extractor,
		chain:     chain,
		limits:    profile.LimitTable(),
	}, nil
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /solve", s.handleSolve)
	mux.HandleFunc("POST /pose", s.handlePose)
	mux.HandleFunc("GET /limits", s.handleLimits)
	return mux
}

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	var req wire.SolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, err)
		return
	}

	target, err := req.TargetPose()
	if err != nil {
		httpError(w, http.StatusBadRequest, err)
		return
	}
	seed, err := req.SeedJoints()
	if err != nil {
		httpError(w, http.StatusBadRequest, err)
		return
	}
	mask, err := req.AxisMask()
	if err != nil {
		httpError(w, http.StatusBadRequest, err)
		return
	}

	res := s.solver.Solve(s.chain.Clone(), seed, target, mask)
	writeJSON(w, wire.NewSolveResponse(res))
}

func (s *Server) handlePose(w http.ResponseWriter, r *http.Request) {
	var req wire.PoseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, err)
		return
	}
	joints, err := robot.AnglesFromSlice(req.Joints)
	if err != nil {
		httpError(w, http.StatusBadRequest, err)
		return
	}

	chain := s.chain.Clone()
	if err := chain.SetAngles(joints.Slice()); err != nil {
		httpError(w, http.StatusBadRequest, err)
		return
	}
	pose, err := s.extractor.Pose(chain)
	if err != nil {
		if errors.Is(err, kinematics.ErrUnresolved) {
			// Transient: the chain is not describable yet, not a fault.
			writeJSON(w, wire.PoseResponse{Available: false})
			return
		}
		httpError(w, http.StatusInternalServerError, err)
		return
	}

	arr := pose.Array()
	writeJSON(w, wire.PoseResponse{Available: true, Pose: arr[:]})
}

type limitsResponse struct {
	Joints []limitEntry `json:"joints"`
}

type limitEntry struct {
	Name string  `json:"name"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

func (s *Server) handleLimits(w http.ResponseWriter, r *http.Request) {
	out := limitsResponse{Joints: make([]limitEntry, robot.NumJoints)}
	for i, l := range s.limits {
		out.Joints[i] = limitEntry{Name: s.chain.Joints[i].Name, Min: l.Min, Max: l.Max}
	}
	writeJSON(w, out)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func httpError(w http.ResponseWriter, code int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
