/*
Copyright 2021 Quayside Labs

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	stdlog "log"
	"os"

	"github.com/quayside/stevedore/lib/utils"
	"github.com/quayside/stevedore/tool/common"
	"github.com/quayside/stevedore/tool/stevedore/cli"

	log "github.com/sirupsen/logrus"
	"gopkg.in/alecthomas/kingpin.v2"
)

func main() {
	utils.InitLogging(log.InfoLevel)
	stdlog.SetOutput(log.StandardLogger().Writer())
	app := kingpin.New("stevedore", "Tool for provisioning and bootstrapping orchestrator server clusters.")
	if err := run(app); err != nil {
		log.WithError(err).Error("Command failed.")
		common.PrintError(err)
		os.Exit(1)
	}
}

func run(app *kingpin.Application) error {
	stevedore := cli.RegisterCommands(app)
	return cli.Run(stevedore)
}
