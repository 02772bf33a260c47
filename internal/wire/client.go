package wire

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/san-kum/armkin/internal/ik"
	"github.com/san-kum/armkin/internal/kinematics"
	"github.com/san-kum/armkin/internal/robot"
)

// RemoteSolver implements the solve contract against a remote HTTP IK
// endpoint speaking the wire format. It is interchangeable with the local
// solver from the caller's side: same inputs, same result semantics.
type RemoteSolver struct {
	BaseURL string
	Client  *http.Client
}

// NewRemoteSolver builds a client with a sane request timeout. A solve is
// tens of milliseconds of work; anything beyond the timeout is a transport
// problem, not a slow solve.
func NewRemoteSolver(baseURL string) *RemoteSolver {
	return &RemoteSolver{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 5 * time.Second},
	}
}

// Solve posts the request to the remote endpoint and decodes the result.
// Transport and decode failures are returned as errors, distinct from solver
// failures which arrive inside the Result.
func (r *RemoteSolver) Solve(ctx context.Context, target kinematics.Pose, seed robot.JointAngles, mask ik.AxisMask) (ik.Result, error) {
	req := NewSolveRequest(target, seed, mask)
	body, err := json.Marshal(req)
	if err != nil {
		return ik.Result{}, fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.BaseURL+"/solve", bytes.NewReader(body))
	if err != nil {
		return ik.Result{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := r.Client.Do(httpReq)
	if err != nil {
		return ik.Result{}, fmt.Errorf("post solve: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ik.Result{}, fmt.Errorf("remote solver returned %s", resp.Status)
	}

	var wireResp SolveResponse
	if err := json.NewDecoder(resp.Body).Decode(&wireResp); err != nil {
		return ik.Result{}, fmt.Errorf("decode response: %w", err)
	}
	return wireResp.Result()
}

// Pose fetches forward kinematics from the remote endpoint. The second
// return is false when the remote chain is not resolvable yet.
func (r *RemoteSolver) Pose(ctx context.Context, joints robot.JointAngles) (kinematics.Pose, bool, error) {
	body, err := json.Marshal(PoseRequest{Joints: joints.Slice()})
	if err != nil {
		return kinematics.Pose{}, false, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.BaseURL+"/pose", bytes.NewReader(body))
	if err != nil {
		return kinematics.Pose{}, false, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := r.Client.Do(httpReq)
	if err != nil {
		return kinematics.Pose{}, false, fmt.Errorf("post pose: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return kinematics.Pose{}, false, fmt.Errorf("remote solver returned %s", resp.Status)
	}

	var wireResp PoseResponse
	if err := json.NewDecoder(resp.Body).Decode(&wireResp); err != nil {
		return kinematics.Pose{}, false, err
	}
	if !wireResp.Available {
		return kinematics.Pose{}, false, nil
	}
	if len(wireResp.Pose) != 6 {
		return kinematics.Pose{}, false, ErrBadPose
	}
	var arr [6]float64
	copy(arr[:], wireResp.Pose)
	return kinematics.PoseFromArray(arr), true, nil
}
