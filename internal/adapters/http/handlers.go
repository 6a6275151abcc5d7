package http

import (
	"errors"
	"math"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/wellpath/internal/core/domain"
	"github.com/samirrijal/wellpath/internal/pkg/wellpath"
)

// ---- Wells ----

// ListWellsHandler returns all wells, paginated.
func ListWellsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		wells, err := deps.Wells.List(c.UserContext())
		if err != nil {
			return errFrom(c, err, "well")
		}

		page, pg := paginate(c, wells)
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: page, Pagination: pg})
	}
}

// CreateWellHandler stores a new well.
func CreateWellHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var well domain.Well
		if err := c.BodyParser(&well); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		well.ID = ""
		if err := deps.Wells.Create(c.UserContext(), &well); err != nil {
			return errFrom(c, err, "well")
		}
		return c.Status(fiber.StatusCreated).JSON(well)
	}
}

// NearbyWellsHandler returns wells within a radius of a point.
func NearbyWellsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
		lon, errLon := strconv.ParseFloat(c.Query("lon"), 64)
		radius := c.QueryFloat("radius", 5000)
		limit := c.QueryInt("limit", 50)

		if errLat != nil || errLon != nil {
			return errBadRequest(c, "lat and lon are required")
		}
		if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
			return errBadRequest(c, "lat/lon out of range")
		}
		if radius <= 0 || radius > 100000 {
			return errBadRequest(c, "radius must be between 1 and 100000 meters")
		}

		wells, err := deps.Wells.FindNearby(c.UserContext(), lat, lon, radius, limit)
		if err != nil {
			return errFrom(c, err, "well")
		}

		c.Set("Cache-Control", "public, max-age=300")
		return c.JSON(wells)
	}
}

// GetWellHandler returns a single well by ID.
func GetWellHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		well, err := deps.Wells.GetByID(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFrom(c, err, "well")
		}
		return c.JSON(well)
	}
}

// WellImportsHandler returns the latest survey imports of a well.
func WellImportsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := deps.Wells.GetByID(c.UserContext(), id); err != nil {
			return errFrom(c, err, "well")
		}
		imports, err := deps.Imports.RecentByWell(c.UserContext(), id)
		if err != nil {
			return errFrom(c, err, "import")
		}
		if imports == nil {
			imports = []domain.SurveyImport{}
		}
		c.Set("Cache-Control", "no-cache")
		return c.JSON(imports)
	}
}

// CreateImportHandler processes an uploaded survey synchronously.
// A rejected survey answers 422; the failed import stays queryable.
func CreateImportHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var payload domain.SurveyPayload
		if err := c.BodyParser(&payload); err != nil {
			return errBadRequest(c, "invalid survey payload")
		}
		if payload.Filename == "" {
			payload.Filename = "upload.json"
		}

		result, err := deps.Imports.Process(c.UserContext(), c.Params("id"), &payload)
		if err != nil {
			if result != nil && result.Import != nil {
				c.Set("Location", "/v1/imports/"+result.Import.ID)
			}
			switch {
			case errors.Is(err, domain.ErrValidation), errors.Is(err, wellpath.ErrInvalidInput):
				return errUnprocessable(c, err.Error())
			default:
				return errFrom(c, err, "well")
			}
		}

		c.Set("Location", "/v1/trajectories/"+result.Trajectory.ID)
		return c.Status(fiber.StatusCreated).JSON(result)
	}
}

// WellTrajectoriesHandler lists every trajectory of a well.
func WellTrajectoriesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		trajs, err := deps.Trajectories.ListByWell(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFrom(c, err, "well")
		}
		if trajs == nil {
			trajs = []domain.Trajectory{}
		}
		return c.JSON(trajs)
	}
}

// WellGeometryHandler returns the descriptors of the well's active trajectory.
func WellGeometryHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		set, err := deps.Trajectories.WellDescriptors(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFrom(c, err, "active trajectory")
		}
		return c.JSON(set)
	}
}

// ---- Imports ----

// GetImportHandler returns a single import with its processing log.
func GetImportHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		imp, err := deps.Imports.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFrom(c, err, "import")
		}
		c.Set("Cache-Control", "no-cache")
		return c.JSON(imp)
	}
}

// ---- Trajectories ----

// GetTrajectoryHandler returns a single trajectory.
func GetTrajectoryHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		traj, err := deps.Trajectories.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFrom(c, err, "trajectory")
		}
		return c.JSON(traj)
	}
}

// DeleteTrajectoryHandler removes a trajectory.
func DeleteTrajectoryHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Trajectories.Delete(c.UserContext(), c.Params("id")); err != nil {
			return errFrom(c, err, "trajectory")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ActivateTrajectoryHandler makes a trajectory the active one of its well.
func ActivateTrajectoryHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		traj, err := deps.Trajectories.Activate(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFrom(c, err, "trajectory")
		}
		return c.JSON(traj)
	}
}

// TrajectoryStationsHandler returns the positioned stations.
func TrajectoryStationsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stations, err := deps.Trajectories.Stations(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFrom(c, err, "trajectory")
		}
		return c.JSON(stations)
	}
}

// TrajectoryGeometryHandler returns the composed descriptors of a trajectory.
func TrajectoryGeometryHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		set, err := deps.Trajectories.Descriptors(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFrom(c, err, "trajectory")
		}
		return c.JSON(set)
	}
}

// TrajectorySummaryHandler returns depth extents, worst dogleg and closure.
func TrajectorySummaryHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sum, err := deps.Trajectories.Summary(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFrom(c, err, "trajectory")
		}
		return c.JSON(sum)
	}
}

// SegmentResponse is the centerline between two measured depths.
type SegmentResponse struct {
	TrajectoryID   string           `json:"trajectory_id"`
	RequestedStart float64          `json:"requested_start_md"`
	RequestedEnd   float64          `json:"requested_end_md"`
	StartDepth     float64          `json:"start_md"`
	EndDepth       float64          `json:"end_md"`
	Clamped        bool             `json:"clamped"`
	Points         []wellpath.Point `json:"points"`
}

// TrajectorySegmentHandler interpolates the centerline between ?start and ?end.
func TrajectorySegmentHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start, errStart := strconv.ParseFloat(c.Query("start"), 64)
		end, errEnd := strconv.ParseFloat(c.Query("end"), 64)
		if errStart != nil || errEnd != nil || math.IsNaN(start) || math.IsNaN(end) {
			return errBadRequest(c, "start and end measured depths are required")
		}

		id := c.Params("id")
		seg, err := deps.Trajectories.Interpolate(c.UserContext(), id, start, end)
		if err != nil {
			return errFrom(c, err, "trajectory")
		}

		points := seg.Points
		if points == nil {
			points = []wellpath.Point{}
		}
		return c.JSON(SegmentResponse{
			TrajectoryID:   id,
			RequestedStart: start,
			RequestedEnd:   end,
			StartDepth:     seg.StartDepth,
			EndDepth:       seg.EndDepth,
			Clamped:        seg.Clamped(),
			Points:         points,
		})
	}
}
