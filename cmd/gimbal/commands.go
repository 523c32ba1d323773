package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"fortio.org/log"
	"github.com/spf13/cobra"

	"github.com/taigrr/gimbal/pkg/math3d"
	"github.com/taigrr/gimbal/pkg/models"
	"github.com/taigrr/gimbal/pkg/skeleton"
	"github.com/taigrr/gimbal/pkg/snapshot"
)

func parseFloats(args []string) ([]float32, error) {
	out := make([]float32, len(args))
	for i, s := range args {
		f, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		out[i] = float32(f)
	}
	return out, nil
}

func printVec3(w io.Writer, label string, v math3d.Vector3d) {
	fmt.Fprintf(w, "%-11s (%.3f, %.3f, %.3f)\n", label+":", v.X, v.Y, v.Z)
}

func (a *app) infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <model.obj|model.glb|model.gltf|model.stl>",
		Short: "Display model information",
		Long:  "Display vertex, triangle and material counts, the bounding box and any skin of a model file.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(cmd.OutOrStdout(), args[0])
		},
	}
}

func runInfo(w io.Writer, path string) error {
	st, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot access file: %w", err)
	}
	mesh, err := models.Load(path)
	if err != nil {
		return fmt.Errorf("load model: %w", err)
	}
	log.Infof("loaded %s: %d vertices", path, mesh.VertexCount())

	fmt.Fprintf(w, "File:       %s\n", filepath.Base(path))
	fmt.Fprintf(w, "Format:     %s\n", strings.ToUpper(models.Format(path)))
	fmt.Fprintf(w, "Size:       %.2f KB\n", float64(st.Size())/1024)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Vertices:   %d\n", mesh.VertexCount())
	fmt.Fprintf(w, "Triangles:  %d\n", mesh.TriangleCount())
	fmt.Fprintf(w, "Edges:      %d\n", len(mesh.Edges()))
	fmt.Fprintf(w, "Materials:  %d\n", mesh.MaterialCount())
	fmt.Fprintln(w)
	if !mesh.Bounds.Valid() {
		fmt.Fprintln(w, "Bounds:     empty")
	} else {
		size := mesh.Size()
		printVec3(w, "Bounds Min", mesh.Bounds.Min())
		printVec3(w, "Bounds Max", mesh.Bounds.Max())
		fmt.Fprintf(w, "Dimensions: %.3f x %.3f x %.3f\n", size.X, size.Y, size.Z)
		printVec3(w, "Center", mesh.Center())
	}
	if mesh.Skinned() {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Bones:      %d\n", mesh.Skeleton.Len())
	}
	for i, mat := range mesh.Materials {
		if mat.HasTexture {
			b := mat.BaseMap.Bounds()
			fmt.Fprintf(w, "Texture:    material %d %q (%dx%d)\n", i, mat.Name, b.Dx(), b.Dy())
		}
	}
	return nil
}

func (a *app) eulerCmd() *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "euler <a1> <a2> <a3>",
		Short: "Convert Euler angles between rotation orders",
		Long: `Convert three angles in degrees, applied in the --from order, to the
equivalent angles in the --to order. Both default to the configured order.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			angles, err := parseFloats(args)
			if err != nil {
				return err
			}
			src, err := a.order(from)
			if err != nil {
				return err
			}
			dst, err := a.order(to)
			if err != nil {
				return err
			}
			q := math3d.QuaternionFromEuler(
				math3d.Degrees(angles[0]), math3d.Degrees(angles[1]), math3d.Degrees(angles[2]), src)
			e1, e2, e3 := q.Euler(dst)

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s: %.3f %.3f %.3f\n", dst, e1.Degrees(), e2.Degrees(), e3.Degrees())
			fmt.Fprintf(w, "quaternion: %s\n", q)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Order of the input angles")
	cmd.Flags().StringVar(&to, "to", "", "Order of the output angles")
	return cmd
}

func (a *app) order(name string) (math3d.EulerOrder, error) {
	if name == "" {
		return a.cfg.Order()
	}
	return math3d.ParseEulerOrder(name)
}

func (a *app) projectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "project <x> <y> <z>",
		Short: "Project a world point through the configured camera",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := parseFloats(args)
			if err != nil {
				return err
			}
			cam := a.cfg.NewCamera()
			p := math3d.V3(v[0], v[1], v[2])
			win, ok := math3d.Project(p, cam.ViewMatrix(), cam.ProjectionMatrix(), cam.Viewport())
			if !ok {
				return fmt.Errorf("point %v cannot be projected", p)
			}
			screen, _, visible := cam.WorldToScreen(p)

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "window: %.3f %.3f %.4f\n", win.X, win.Y, win.Z)
			fmt.Fprintf(w, "screen: %.3f %.3f\n", screen.X, screen.Y)
			fmt.Fprintf(w, "visible: %t\n", visible)
			return nil
		},
	}
}

func (a *app) unprojectCmd() *cobra.Command {
	var floor bool
	var floorY float32
	cmd := &cobra.Command{
		Use:   "unproject <screen-x> <screen-y> [depth]",
		Short: "Map a screen point back into the world",
		Long: `Map a screen point (top-left origin) and a depth in [0, 1] back into
world space. Without a depth the point is cast as a ray; --floor intersects
that ray with the plane y = --floor-y.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := parseFloats(args)
			if err != nil {
				return err
			}
			cam := a.cfg.NewCamera()
			screen := math3d.V2(v[0], v[1])
			w := cmd.OutOrStdout()

			if len(v) == 3 {
				p, ok := cam.ScreenToWorld(screen, v[2])
				if !ok {
					return fmt.Errorf("screen point %v at depth %v cannot be unprojected", screen, v[2])
				}
				printVec3(w, "world", p)
				return nil
			}
			origin, dir, ok := cam.ScreenToRay(screen)
			if !ok {
				return fmt.Errorf("screen point %v cannot be unprojected", screen)
			}
			printVec3(w, "origin", origin)
			printVec3(w, "direction", dir)
			if floor {
				hit, ok := cam.ScreenToFloor(screen, floorY)
				if !ok {
					fmt.Fprintln(w, "floor:      miss")
					return nil
				}
				printVec3(w, "floor", hit)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&floor, "floor", false, "Intersect the ray with a horizontal floor")
	cmd.Flags().Float32Var(&floorY, "floor-y", 0, "Height of the floor plane")
	return cmd
}

func (a *app) poseCmd() *cobra.Command {
	var bone string
	var angle, at float32
	cmd := &cobra.Command{
		Use:   "pose <skeleton.bin>",
		Short: "Print bone world positions of a bind pose",
		Long: `Read a binary bind pose and print every bone's world position.

With --bone the pose is sampled from a one second animation that turns
that bone by --angle degrees about Z, at time --time.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			skel, err := skeleton.ReadBindPose(f)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			log.Infof("read %d bones from %s", skel.Len(), args[0])

			pose := skel.BindPose()
			if bone != "" {
				if pose, err = turnBone(skel, bone, math3d.Degrees(angle), at); err != nil {
					return err
				}
			}
			return printPose(cmd.OutOrStdout(), skel, pose)
		},
	}
	cmd.Flags().StringVar(&bone, "bone", "", "Bone to animate (bone0, bone1, ...)")
	cmd.Flags().Float32Var(&angle, "angle", 90, "Rotation of --bone at the end of the animation, in degrees")
	cmd.Flags().Float32Var(&at, "time", 1, "Sample time in seconds")
	return cmd
}

// turnBone samples a two keyframe animation from the bind pose to the pose
// with bone rotated by angle about Z.
func turnBone(skel *skeleton.Skeleton, bone string, angle math3d.Angle, at float32) (skeleton.Pose, error) {
	i, ok := skel.Find(bone)
	if !ok {
		return nil, fmt.Errorf("no bone named %q", bone)
	}
	end := skel.BindPose()
	end[i].Rotation = math3d.QuaternionZAxis(angle).Mul(end[i].Rotation).Normalized()
	anim := &skeleton.Animation{
		Name: "turn " + bone,
		Keyframes: []skeleton.Keyframe{
			{Time: 0, Pose: skel.BindPose()},
			{Time: 1, Pose: end},
		},
	}
	if err := anim.Validate(skel); err != nil {
		return nil, err
	}
	log.Debugf("sampling %q at %gs", anim.Name, at)
	return anim.Sample(at)
}

func printPose(w io.Writer, skel *skeleton.Skeleton, pose skeleton.Pose) error {
	pos, err := skel.WorldPositions(pose)
	if err != nil {
		return err
	}
	for i, b := range skel.Bones {
		fmt.Fprintf(w, "%-8s parent %2d  (%.3f, %.3f, %.3f)\n", b.Name, b.Parent, pos[i].X, pos[i].Y, pos[i].Z)
	}
	bounds, err := skel.Bounds(pose)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "bounds   %s\n", bounds)
	return nil
}

func (a *app) snapshotCmd() *cobra.Command {
	var yaw, pitch float32
	cmd := &cobra.Command{
		Use:   "snapshot <model> <out.png|out.webp|out.pdf>",
		Short: "Write a wireframe view of a model",
		Long: `Frame the model from an orbit at --yaw and --pitch and write its
wireframe. The output format follows the file extension.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := snapshot.FormatOf(args[1]); err != nil {
				return err
			}
			mesh, err := models.Load(args[0])
			if err != nil {
				return fmt.Errorf("load model: %w", err)
			}
			sc := a.cfg.Snapshot
			if cmd.Flags().Changed("yaw") {
				sc.Yaw = yaw
			}
			if cmd.Flags().Changed("pitch") {
				sc.Pitch = pitch
			}
			cam := snapshot.Frame(mesh, a.cfg.Viewport.Width, a.cfg.Viewport.Height,
				math3d.Degrees(sc.Yaw), math3d.Degrees(sc.Pitch))

			opts := snapshot.DefaultOptions()
			opts.Supersample = sc.Supersample
			opts.LineWidth = sc.LineWidth
			if err := snapshot.Write(args[1], mesh, cam, opts); err != nil {
				return err
			}
			log.Infof("wrote %s (%dx%d, %d edges)", args[1], cam.Width, cam.Height, len(mesh.Edges()))
			return nil
		},
	}
	cmd.Flags().Float32Var(&yaw, "yaw", 0, "Orbit yaw in degrees (default from config)")
	cmd.Flags().Float32Var(&pitch, "pitch", 0, "Orbit pitch in degrees (default from config)")
	return cmd
}
