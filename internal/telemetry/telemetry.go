// Package telemetry mirrors run snapshots into Prometheus gauges and
// serves them over HTTP for scraping.
package telemetry

import (
	"errors"
	"net"
	"net/http"

	"github.com/edaniels/golog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chantakan/2d-drone-sim/internal/sim"
)

var (
	tickGauge   = prometheus.NewGauge(prometheus.GaugeOpts{Name: "sim_tick"})
	timeGauge   = prometheus.NewGauge(prometheus.GaugeOpts{Name: "sim_time_seconds"})
	energyGauge = prometheus.NewGauge(prometheus.GaugeOpts{Name: "sim_energy_joules"})
	haltedGauge = prometheus.NewGauge(prometheus.GaugeOpts{Name: "sim_halted"})
	pidGauge    = prometheus.NewGauge(prometheus.GaugeOpts{Name: "sim_pid_enabled"})

	cartPositionGauge = prometheus.NewGauge(prometheus.GaugeOpts{Name: "cartpole_position_meters"})
	cartVelocityGauge = prometheus.NewGauge(prometheus.GaugeOpts{Name: "cartpole_velocity_mps"})
	cartAngleGauge    = prometheus.NewGauge(prometheus.GaugeOpts{Name: "cartpole_angle_radians"})
	cartForceGauge    = prometheus.NewGauge(prometheus.GaugeOpts{Name: "cartpole_force_newton"})
	cartScoreGauge    = prometheus.NewGauge(prometheus.GaugeOpts{Name: "cartpole_score"})

	droneXGauge        = prometheus.NewGauge(prometheus.GaugeOpts{Name: "drone_x_meters"})
	droneYGauge        = prometheus.NewGauge(prometheus.GaugeOpts{Name: "drone_y_meters"})
	droneRotationGauge = prometheus.NewGauge(prometheus.GaugeOpts{Name: "drone_rotation_radians"})
	droneWindGauge     = prometheus.NewGauge(prometheus.GaugeOpts{Name: "drone_wind_force_newton"})
	droneThrustGauge   = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "drone_rotor_thrust_newton",
			Help: "Commanded thrust of each rotor (in Newtons)",
		},
		[]string{"rotor"},
	)
)

func init() {
	prometheus.MustRegister(
		tickGauge, timeGauge, energyGauge, haltedGauge, pidGauge,
		cartPositionGauge, cartVelocityGauge, cartAngleGauge, cartForceGauge, cartScoreGauge,
		droneXGauge, droneYGauge, droneRotationGauge, droneWindGauge, droneThrustGauge,
	)
}

// Exporter publishes every snapshot it observes and serves the scrape
// endpoint at /metrics. Gauge writes are atomic, so observing from the
// simulation goroutine while the server reads is fine.
type Exporter struct {
	logger golog.Logger
	srv    *http.Server
	ln     net.Listener
}

func NewExporter(addr string, logger golog.Logger) *Exporter {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &Exporter{
		logger: logger,
		srv:    &http.Server{Addr: addr, Handler: mux},
	}
}

// Start binds the listener and serves in the background. It returns
// once the port is bound, so scrapes cannot race the caller.
func (e *Exporter) Start() error {
	ln, err := net.Listen("tcp", e.srv.Addr)
	if err != nil {
		return err
	}
	e.ln = ln
	e.logger.Infof("telemetry listening on %s", ln.Addr())
	go func() {
		if err := e.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.logger.Errorw("telemetry server failed", "error", err)
		}
	}()
	return nil
}

// Addr reports the bound address, nil before Start.
func (e *Exporter) Addr() net.Addr {
	if e.ln == nil {
		return nil
	}
	return e.ln.Addr()
}

func (e *Exporter) Close() error {
	return e.srv.Close()
}

func (e *Exporter) OnTick(snap sim.Snapshot) {
	tickGauge.Set(float64(snap.Tick))
	timeGauge.Set(snap.Time)
	energyGauge.Set(snap.Energy)
	haltedGauge.Set(boolGauge(snap.Halted))
	pidGauge.Set(boolGauge(snap.PIDOn))

	switch snap.Model {
	case sim.ModelDrone:
		droneXGauge.Set(snap.Drone.X)
		droneYGauge.Set(snap.Drone.Y)
		droneRotationGauge.Set(snap.Drone.Rotation)
		droneWindGauge.Set(snap.Wind)
		droneThrustGauge.WithLabelValues("left").Set(snap.Left)
		droneThrustGauge.WithLabelValues("right").Set(snap.Right)
	default:
		cartPositionGauge.Set(snap.Cart.Position)
		cartVelocityGauge.Set(snap.Cart.Velocity)
		cartAngleGauge.Set(snap.Cart.Angle)
		cartForceGauge.Set(snap.Force)
		cartScoreGauge.Set(float64(snap.Cart.Score))
	}
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
