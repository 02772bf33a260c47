package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/san-kum/armkin/internal/config"
	"github.com/san-kum/armkin/internal/ik"
	"github.com/san-kum/armkin/internal/jog"
	"github.com/san-kum/armkin/internal/kinematics"
	"github.com/san-kum/armkin/internal/robot"
	"github.com/san-kum/armkin/internal/server"
	"github.com/san-kum/armkin/internal/storage"
	"github.com/san-kum/armkin/internal/viz"
	"github.com/san-kum/armkin/internal/wire"
)

var (
	dataDir    string
	configFile string
	preset     string

	targetFlag string
	seedFlag   string
	maskFlag   string
	jointsFlag string
	remoteURL  string
	saveRun    bool
	showTrace  bool

	addr string

	jogAxis string
	jogStep float64
	jogHz   int

	sweepAxis  string
	sweepFrom  float64
	sweepTo    float64
	sweepSteps int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "armkin",
		Short: "6-axis arm kinematics toolkit",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".armkin", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "solver tuning preset")

	poseCmd := &cobra.Command{
		Use:   "pose",
		Short: "forward kinematics of a joint configuration",
		RunE:  runPose,
	}
	poseCmd.Flags().StringVar(&jointsFlag, "joints", "", "J1..J6 in degrees, comma separated (default: home)")

	solveCmd := &cobra.Command{
		Use:   "solve",
		Short: "solve inverse kinematics for a target pose",
		RunE:  runSolve,
	}
	solveCmd.Flags().StringVar(&targetFlag, "target", "", "X,Y,Z,RX,RY,RZ (mm/deg)")
	solveCmd.Flags().StringVar(&seedFlag, "seed", "", "seed J1..J6 (default: home)")
	solveCmd.Flags().StringVar(&maskFlag, "mask", "", "axis mask, six 0/1 values (default: all enabled)")
	solveCmd.Flags().StringVar(&remoteURL, "remote", "", "solve against a remote IK endpoint instead of locally")
	solveCmd.Flags().BoolVar(&saveRun, "save", false, "persist the solve trace")
	solveCmd.Flags().BoolVar(&showTrace, "plot", false, "plot residual convergence")
	_ = solveCmd.MarkFlagRequired("target")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "serve the IK endpoint over HTTP",
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")

	jogCmd := &cobra.Command{
		Use:   "jog",
		Short: "jog the tool along one axis with a live view",
		RunE:  runJog,
	}
	jogCmd.Flags().StringVar(&jogAxis, "axis", "X", "axis to jog (X, Y, Z, RX, RY, RZ)")
	jogCmd.Flags().Float64Var(&jogStep, "step", 0, "step per tick, mm or degrees (default from config)")
	jogCmd.Flags().IntVar(&jogHz, "hz", 0, "tick rate (default from config)")
	jogCmd.Flags().StringVar(&maskFlag, "mask", "", "axis mask, six 0/1 values")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "sweep a target along one axis and chart solver behavior",
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringVar(&sweepAxis, "axis", "X", "axis to sweep")
	sweepCmd.Flags().Float64Var(&sweepFrom, "from", -100, "start offset from the home pose")
	sweepCmd.Flags().Float64Var(&sweepTo, "to", 100, "end offset from the home pose")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 40, "number of targets")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored solves",
		RunE:  runList,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored solve's residual convergence",
		Args:  cobra.ExactArgs(1),
		RunE:  runPlot,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export a stored solve trace to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  runExportCSV,
	}

	limitsCmd := &cobra.Command{
		Use:   "limits",
		Short: "print the joint limit table",
		RunE:  runLimits,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list solver tuning presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				fmt.Println(name)
			}
			return nil
		},
	}

	rootCmd.AddCommand(poseCmd, solveCmd, serveCmd, jogCmd, sweepCmd, listCmd, plotCmd, exportCSVCmd, limitsCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveConfig merges preset and config file, preset first.
func resolveConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg = p
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	return cfg, nil
}

type session struct {
	cfg       *config.Config
	profile   *robot.Profile
	chain     kinematics.Chain
	extractor *kinematics.Extractor
	solver    *ik.Solver
}

func newSession() (*session, error) {
	cfg, err := resolveConfig()
	if err != nil {
		return nil, err
	}
	profile := cfg.Profile()
	chain, err := profile.Chain()
	if err != nil {
		return nil, err
	}
	extractor := profile.Extractor()
	return &session{
		cfg:       cfg,
		profile:   profile,
		chain:     chain,
		extractor: extractor,
		solver:    ik.New(extractor, profile.LimitTable(), cfg.SolverParams()),
	}, nil
}

func runPose(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}

	joints := s.profile.HomeAngles()
	if jointsFlag != "" {
		joints, err = parseAngles(jointsFlag)
		if err != nil {
			return err
		}
	}

	if err := s.chain.SetAngles(joints.Slice()); err != nil {
		return err
	}
	pose, err := s.extractor.Pose(s.chain)
	if err != nil {
		return fmt.Errorf("pose unavailable: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "AXIS\tVALUE")
	fmt.Fprintf(w, "X\t%.3f mm\n", pose.X)
	fmt.Fprintf(w, "Y\t%.3f mm\n", pose.Y)
	fmt.Fprintf(w, "Z\t%.3f mm\n", pose.Z)
	fmt.Fprintf(w, "RX\t%.3f°\n", pose.RX)
	fmt.Fprintf(w, "RY\t%.3f°\n", pose.RY)
	fmt.Fprintf(w, "RZ\t%.3f°\n", pose.RZ)
	return w.Flush()
}

func runSolve(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}

	target, err := parsePose(targetFlag)
	if err != nil {
		return err
	}
	seed := s.profile.HomeAngles()
	if seedFlag != "" {
		seed, err = parseAngles(seedFlag)
		if err != nil {
			return err
		}
	}
	mask := ik.AllAxes
	if maskFlag != "" {
		mask, err = parseMask(maskFlag)
		if err != nil {
			return err
		}
	}

	var res ik.Result
	var trace *ik.Trace

	if remoteURL != "" {
		remote := wire.NewRemoteSolver(remoteURL)
		res, err = remote.Solve(context.Background(), target, seed, mask)
		if err != nil {
			return err
		}
	} else {
		res, trace = s.solver.SolveTraced(s.chain, seed, target, mask)
	}

	printResult(res, mask)

	if showTrace && trace != nil {
		fmt.Println()
		fmt.Println(viz.ResidualPlot(trace.Residuals(), "residual per iteration"))
	}

	if saveRun {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(s.profile.Name, target, mask, seed, res, trace)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}
	return nil
}

func printResult(res ik.Result, mask ik.AxisMask) {
	if res.Success {
		fmt.Printf("converged in %d iterations (residual %.4f, mask %s)\n", res.Iterations, res.Residual, mask)
		for i, v := range res.Joints {
			fmt.Printf("  J%d: %10.4f°\n", i+1, v)
		}
		return
	}
	fmt.Printf("failed: %s after %d iterations (residual %.4f)\n", res.Reason, res.Iterations, res.Residual)
}

func runServe(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}

	srv, err := server.New(s.profile, s.cfg.SolverParams())
	if err != nil {
		return err
	}

	listen := s.cfg.Serve.Addr
	if addr != "" {
		listen = addr
	}

	fmt.Printf("serving IK endpoint on %s\n", listen)
	return http.ListenAndServe(listen, srv.Handler())
}

func runJog(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}

	axis, err := jog.ParseAxis(strings.ToUpper(jogAxis))
	if err != nil {
		return err
	}
	mask := ik.AllAxes
	if maskFlag != "" {
		mask, err = parseMask(maskFlag)
		if err != nil {
			return err
		}
	}

	step := s.cfg.Jog.StepMM
	if jogStep != 0 {
		step = jogStep
	}
	hz := s.cfg.Jog.Hz
	if jogHz != 0 {
		hz = jogHz
	}

	tracker, err := jog.New(s.solver, s.extractor, s.chain, s.profile.HomeAngles(), jog.Config{
		Hz:   hz,
		Axis: axis,
		Step: step,
		Mask: mask,
	})
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	go func() {
		_ = tracker.Start(ctx)
	}()

	var names [robot.NumJoints]string
	for i, j := range s.profile.Joints {
		names[i] = j.Name
	}

	m := viz.NewModel(tracker.States(), names, s.profile.LimitTable())
	p := tea.NewProgram(m)
	_, err = p.Run()
	return err
}

func runSweep(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	if sweepSteps < 2 {
		return fmt.Errorf("steps must be at least 2")
	}

	axis, err := jog.ParseAxis(strings.ToUpper(sweepAxis))
	if err != nil {
		return err
	}

	seed := s.profile.HomeAngles()
	if err := s.chain.SetAngles(seed.Slice()); err != nil {
		return err
	}
	base, err := s.extractor.Pose(s.chain)
	if err != nil {
		return fmt.Errorf("pose unavailable: %w", err)
	}

	iterations := make([]float64, 0, sweepSteps)
	residuals := make([]float64, 0, sweepSteps)
	failures := 0

	joints := seed
	for i := 0; i < sweepSteps; i++ {
		offset := sweepFrom + (sweepTo-sweepFrom)*float64(i)/float64(sweepSteps-1)
		target := offsetPose(base, axis, offset)

		res := s.solver.Solve(s.chain, joints, target, ik.AllAxes)
		if res.Success {
			joints = res.Joints // stay on the same branch across the sweep
		} else {
			failures++
		}
		iterations = append(iterations, float64(res.Iterations))
		residuals = append(residuals, res.Residual)
	}

	fmt.Printf("sweep %s from %+.1f to %+.1f, %d targets, %d failures\n\n",
		axis, sweepFrom, sweepTo, sweepSteps, failures)
	fmt.Println(viz.SweepPlot(iterations, "iterations per target"))
	fmt.Println()
	fmt.Println(viz.SweepPlot(residuals, "final residual per target"))
	return nil
}

func offsetPose(p kinematics.Pose, axis jog.Axis, offset float64) kinematics.Pose {
	switch axis {
	case jog.AxisX:
		p.X += offset
	case jog.AxisY:
		p.Y += offset
	case jog.AxisZ:
		p.Z += offset
	case jog.AxisRX:
		p.RX = kinematics.WrapDeg(p.RX + offset)
	case jog.AxisRY:
		p.RY = kinematics.WrapDeg(p.RY + offset)
	case jog.AxisRZ:
		p.RZ = kinematics.WrapDeg(p.RZ + offset)
	}
	return p
}

func runList(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPROFILE\tTIME\tOK\tITERS\tRESIDUAL\tREASON")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%d\t%.4f\t%s\n",
			run.ID,
			run.Profile,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Success,
			run.Iterations,
			run.Residual,
			run.Reason,
		)
	}
	return w.Flush()
}

func runPlot(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	samples, err := st.LoadTrace(args[0])
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("no trace recorded for %s", args[0])
	}

	fmt.Printf("run: %s (success=%t, %d iterations)\n\n", meta.ID, meta.Success, meta.Iterations)
	residuals := make([]float64, len(samples))
	for i, s := range samples {
		residuals[i] = s.Residual
	}
	fmt.Println(viz.ResidualPlot(residuals, "residual per iteration"))
	return nil
}

func runExportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	samples, err := st.LoadTrace(args[0])
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("no trace recorded for %s", args[0])
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()
	if err := w.Write([]string{"iteration", "residual", "pos_error", "cond", "clamped"}); err != nil {
		return err
	}
	for _, s := range samples {
		row := []string{
			strconv.Itoa(s.Iteration),
			strconv.FormatFloat(s.Residual, 'f', 6, 64),
			strconv.FormatFloat(s.PosError, 'f', 6, 64),
			strconv.FormatFloat(s.Cond, 'g', 6, 64),
			strconv.Itoa(s.Clamped),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func runLimits(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "JOINT\tMIN\tMAX\tHOME")
	for _, j := range s.profile.Joints {
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%.1f\n", j.Name, j.Min, j.Max, j.Home)
	}
	return w.Flush()
}

func parseFloats(s string, n int, what string) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("%s needs %d comma-separated values, got %d", what, n, len(parts))
	}
	out := make([]float64, n)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("%s element %d: %w", what, i, err)
		}
		out[i] = v
	}
	return out, nil
}

func parseAngles(s string) (robot.JointAngles, error) {
	vals, err := parseFloats(s, robot.NumJoints, "joints")
	if err != nil {
		return robot.JointAngles{}, err
	}
	return robot.AnglesFromSlice(vals)
}

func parsePose(s string) (kinematics.Pose, error) {
	vals, err := parseFloats(s, 6, "pose")
	if err != nil {
		return kinematics.Pose{}, err
	}
	var arr [6]float64
	copy(arr[:], vals)
	return kinematics.PoseFromArray(arr), nil
}

func parseMask(s string) (ik.AxisMask, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 6 {
		return ik.AxisMask{}, fmt.Errorf("mask needs 6 comma-separated values, got %d", len(parts))
	}
	var ints [6]int
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return ik.AxisMask{}, fmt.Errorf("mask element %d: %w", i, err)
		}
		ints[i] = v
	}
	return ik.MaskFromInts(ints)
}
