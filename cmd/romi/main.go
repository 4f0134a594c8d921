package main

//go-build: CGO_ENABLED=0

import (
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/golang/glog"

	"github.com/robotalks/romi.go/pkg/config"
	fx "github.com/robotalks/romi.go/pkg/framework"
	"github.com/robotalks/romi.go/pkg/romi"
	"github.com/robotalks/romi.go/pkg/runlog"
	simromi "github.com/robotalks/romi.go/pkg/sim/bots/romi"
	"github.com/robotalks/romi.go/pkg/sim/physics"
)

var listRuns int

func init() {
	config.SetupFlags()
	simromi.SetupFlags()
	flag.IntVar(&listRuns, "runs", listRuns, "List the most recent runs and exit.")
}

func main() {
	flag.Parse()
	conf := config.NewConfig()

	if listRuns > 0 {
		printRuns(conf.RunLog, listRuns)
		return
	}

	tuning, err := conf.Tuning()
	if err != nil {
		log.Fatalln(err)
	}

	clock := fx.NewSystemClock()
	chassis := simromi.NewConfig().NewChassis()
	robot, err := romi.New(conf.ID, tuning, romi.Hardware{
		Drive:      chassis.Drive(),
		IMU:        chassis.IMU(),
		LineSensor: chassis.LineSensor(),
		Bumper:     chassis.Bumper(),
		Link:       conf.MustNewLink(),
	})
	if err != nil {
		log.Fatalln(err)
	}

	var store *runlog.Store
	if conf.RunLog != "" {
		if store, err = runlog.Open(conf.RunLog); err != nil {
			log.Fatalln(err)
		}
		robot.RecordWith(store)
	}

	if err := robot.Start(); err != nil {
		log.Fatalln(err)
	}
	glog.Infof("robot %s started, policy %s", conf.ID, tuning.Policy)

	runner := fx.NewRunner().HandleSignals()
	err = fx.NewLoop(clock).
		AddRunnable(physics.NewEngine(clock, chassis.Body)).
		Add(robot).
		Run(runner.Context)
	if store != nil {
		if cerr := store.Close(); cerr != nil {
			glog.Warningf("close run log: %v", cerr)
		}
	}
	glog.Flush()
	if err != nil {
		log.Fatalln(err)
	}
}

func printRuns(path string, limit int) {
	if path == "" {
		log.Fatalln("run log disabled")
	}
	store, err := runlog.Open(path)
	if err != nil {
		log.Fatalln(err)
	}
	defer store.Close()
	runs, err := store.Runs(limit)
	if err != nil {
		log.Fatalln(err)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tROBOT\tSTARTED\tDURATION\tWAYPOINT\tWALL\tCAUSE")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%v\t%d\t%v\t%s\n",
			run.ID[:8], run.Robot, run.Started.Local().Format("2006-01-02 15:04:05"),
			run.Ended.Sub(run.Started).Round(1e6), run.Waypoint, run.WallHit, run.Cause)
	}
	w.Flush()
}
