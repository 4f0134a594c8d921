package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"github.com/robotalks/romi.go/pkg/link/mqtt"
	"github.com/robotalks/romi.go/pkg/romi"
	"github.com/robotalks/romi.go/pkg/telemetry"
)

var (
	mqttURL = "mqtt://localhost:1883/romi/"
)

func init() {
	if val := os.Getenv("ROMI_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	c, err := mqtt.NewClientFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalln(token.Error())
	}

	parsers := make(map[string]*telemetry.Parser)
	c.Sub("#", mqtt.Handler(func(topic string, payload []byte) {
		switch {
		case strings.HasSuffix(topic, "/"+mqtt.TopicStatus):
			log.Printf("%s: session %s", topic, string(payload))
		case strings.HasSuffix(topic, "/"+mqtt.TopicCommand):
			for _, line := range strings.Split(string(payload), "\r") {
				if line == "" {
					continue
				}
				cmd, err := romi.ParseCommand(line)
				if err != nil {
					log.Printf("%s: bad command %q: %v", topic, line, err)
					continue
				}
				log.Printf("%s: %s", topic, cmd)
			}
		case strings.HasSuffix(topic, "/"+mqtt.TopicTelemetry):
			p := parsers[topic]
			if p == nil {
				p = &telemetry.Parser{}
				parsers[topic] = p
			}
			p.Feed(payload, func(pkt *telemetry.Packet) {
				f, err := telemetry.DecodeFrame(pkt)
				if err != nil {
					log.Printf("%s: bad packet %d: %v", topic, pkt.Seq, err)
					return
				}
				log.Printf("%s: [%d] %s", topic, pkt.Seq, f.String())
			})
		}
	}))
	<-(chan struct{})(nil)
}
