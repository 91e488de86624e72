// Package config defines the structures that describe which fiducial markers a
// robot carries and which kinematic joints each marker anchors.
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/golang/geo/r3"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"

	"github.com/michaelharrison1/DH-Parameter-Visualization/spatialmath"
)

// Deadband thresholds applied when a FilterConfig leaves them unset.
const (
	DefaultPositionThresholdMeters  = 0.002
	DefaultRotationThresholdDegrees = 0.5
)

// A Config describes every fiducial marker in a teaching setup and the joints
// anchored to each. It is read once before a session starts and never changes
// while one runs.
type Config struct {
	Tags   []TagMapping `json:"tags"`
	Filter FilterConfig `json:"filter"`
}

// A TagMapping associates one printed marker with the joints it anchors. The
// same marker id may appear in more than one mapping; such mappings share an
// anchor downstream.
type TagMapping struct {
	MarkerID         int               `json:"marker_id"`
	MarkerSizeMeters float64           `json:"marker_size_meters"`
	Joints           []JointDefinition `json:"joints"`
}

// A JointDefinition places one joint frame relative to its marker, either as a
// translation plus Euler rotation or as classic DH parameters.
type JointDefinition struct {
	JointID        int         `json:"joint_id"`
	PositionOffset Translation `json:"position_offset"`
	RotationOffset Rotation    `json:"rotation_offset"`
	DH             *DHParams   `json:"dh,omitempty"`
}

// DHParams are the classic proximal Denavit-Hartenberg parameters of a joint
// frame: link length a and link offset d in meters, link twist alpha in
// radians.
type DHParams struct {
	A     float64 `json:"a"`
	D     float64 `json:"d"`
	Alpha float64 `json:"alpha"`
}

// A FilterConfig holds the deadband thresholds applied to every marker's pose
// stream. A zero threshold selects the default; thresholds may not be
// negative.
type FilterConfig struct {
	PositionThresholdMeters  float64 `json:"position_threshold_meters"`
	RotationThresholdDegrees float64 `json:"rotation_threshold_degrees"`
}

// Translation is the translation between two objects. It is always in meters.
type Translation struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Rotation is the rotation between two objects, as Euler angles in degrees.
type Rotation struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

// An AttributeMap is a generic pre-JSON configuration representation handed
// over by collaborators that do their own config management.
type AttributeMap map[string]interface{}

// Read reads a configuration from the given file. The result is not yet
// validated; call Ensure before use.
func Read(path string) (Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer goutils.UncheckedErrorFunc(file.Close)
	return FromReader(file)
}

// FromReader reads a configuration from the given reader.
func FromReader(r io.Reader) (Config, error) {
	var cfg Config
	if err := json.NewDecoder(r).Decode(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "cannot parse config as json")
	}
	return cfg, nil
}

// FromAttributes converts a generic attribute map into a Config.
func FromAttributes(attributes AttributeMap) (Config, error) {
	var cfg Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{TagName: "json", Result: &cfg})
	if err != nil {
		return Config{}, err
	}
	if err := decoder.Decode(map[string]interface{}(attributes)); err != nil {
		return Config{}, errors.Wrap(err, "cannot decode config attributes")
	}
	return cfg, nil
}

// Ensure validates the whole configuration and fills in filter defaults. All
// validation failures are reported together rather than one at a time.
func (c *Config) Ensure() error {
	var err error
	for idx := range c.Tags {
		err = multierr.Combine(err, c.Tags[idx].Validate(fmt.Sprintf("tags.%d", idx)))
	}

	jointIDs := map[int]bool{}
	for _, tm := range c.Tags {
		for _, jd := range tm.Joints {
			if jointIDs[jd.JointID] {
				err = multierr.Combine(err, errors.Errorf("joint id %d is not unique", jd.JointID))
				continue
			}
			jointIDs[jd.JointID] = true
		}
	}

	err = multierr.Combine(err, c.Filter.Validate("filter"))
	if err != nil {
		return err
	}

	if c.Filter.PositionThresholdMeters == 0 {
		c.Filter.PositionThresholdMeters = DefaultPositionThresholdMeters
	}
	if c.Filter.RotationThresholdDegrees == 0 {
		c.Filter.RotationThresholdDegrees = DefaultRotationThresholdDegrees
	}
	return nil
}

// Validate ensures all parts of the tag mapping are valid.
func (tm *TagMapping) Validate(path string) error {
	if tm.MarkerSizeMeters <= 0 {
		return goutils.NewConfigValidationError(path,
			errors.Errorf("marker_size_meters must be positive, got %v", tm.MarkerSizeMeters))
	}
	for idx := range tm.Joints {
		if err := tm.Joints[idx].Validate(fmt.Sprintf("%s.joints.%d", path, idx)); err != nil {
			return err
		}
	}
	return nil
}

// Validate ensures the joint definition is valid.
func (jd *JointDefinition) Validate(path string) error {
	if jd.DH != nil && (jd.PositionOffset != Translation{} || jd.RotationOffset != Rotation{}) {
		return goutils.NewConfigValidationError(path,
			errors.New("dh parameters and position/rotation offsets are mutually exclusive"))
	}
	return nil
}

// Validate ensures the filter thresholds are usable.
func (fc *FilterConfig) Validate(path string) error {
	if fc.PositionThresholdMeters < 0 {
		return goutils.NewConfigValidationError(path,
			errors.Errorf("position_threshold_meters must be non-negative, got %v", fc.PositionThresholdMeters))
	}
	if fc.RotationThresholdDegrees < 0 {
		return goutils.NewConfigValidationError(path,
			errors.Errorf("rotation_threshold_degrees must be non-negative, got %v", fc.RotationThresholdDegrees))
	}
	return nil
}

// Offset returns the joint frame's pose relative to its marker.
func (jd *JointDefinition) Offset() spatialmath.Pose {
	if jd.DH != nil {
		return spatialmath.NewPoseFromDH(jd.DH.A, jd.DH.D, jd.DH.Alpha)
	}
	return spatialmath.NewPose(
		r3.Vector{X: jd.PositionOffset.X, Y: jd.PositionOffset.Y, Z: jd.PositionOffset.Z},
		spatialmath.EulerAnglesFromDegrees(jd.RotationOffset.Roll, jd.RotationOffset.Pitch, jd.RotationOffset.Yaw),
	)
}

// A Joint is one flattened entry of the configuration: a joint id, the marker
// anchoring it, the joint's global sequence position, and its frame offset
// from the marker.
type Joint struct {
	ID       int
	Index    int
	MarkerID int
	Offset   spatialmath.Pose
}

// JointCount returns the total number of joints across all tags.
func (c *Config) JointCount() int {
	count := 0
	for _, tm := range c.Tags {
		count += len(tm.Joints)
	}
	return count
}

// Joints returns the configuration's joints flattened into sequence order:
// tags in declaration order, then each tag's joints in order. Index is the
// joint's global sequence position.
func (c *Config) Joints() []Joint {
	joints := make([]Joint, 0, c.JointCount())
	for _, tm := range c.Tags {
		for idx := range tm.Joints {
			jd := &tm.Joints[idx]
			joints = append(joints, Joint{
				ID:       jd.JointID,
				Index:    len(joints),
				MarkerID: tm.MarkerID,
				Offset:   jd.Offset(),
			})
		}
	}
	return joints
}
