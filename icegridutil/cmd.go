/*
Copyright © 2020 the IceGrid authors.
This file is part of IceGrid.

IceGrid is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

IceGrid is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with IceGrid.  If not, see <http://www.gnu.org/licenses/>.
*/

package icegridutil

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/icegrid"
	"github.com/spatialmodel/icegrid/internal/hash"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to IceGrid.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "InputFile",
			usage: `
              InputFile is the path to the netCDF file holding the gridded
              sea ice dataset. It can include environment variables.`,
			shorthand:  "i",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{restrictCmd.Flags(), fillCmd.Flags(), meansCmd.Flags(), regionsCmd.Flags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile is the path where the output netCDF file should be
              written. It can include environment variables.`,
			shorthand:  "o",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{restrictCmd.Flags(), fillCmd.Flags()},
		},
		{
			name: "Regions",
			usage: `
              Regions is a list of NSIDC region mask keys, for example
              [13] for the Beaufort Sea. Data outside of these regions
              is removed. The default is the Inner Arctic.`,
			defaultVal: append([]int(nil), icegrid.InnerArctic...),
			flagsets:   []*pflag.FlagSet{restrictCmd.Flags(), meansCmd.Flags()},
		},
		{
			name: "RegionCatalogue",
			usage: `
              RegionCatalogue is the path to an optional TOML file listing
              region keys and labels. If it is not specified, the catalogue
              stored in InputFile is used.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{restrictCmd.Flags(), meansCmd.Flags(), regionsCmd.Flags()},
		},
		{
			name: "FillVariables",
			usage: `
              FillVariables lists the time varying variables whose missing
              grid cells should be filled in from the nearest cell with data.`,
			defaultVal: []string{icegrid.IceThicknessVar, "ice_thickness_unc", "ice_type"},
			flagsets:   []*pflag.FlagSet{fillCmd.Flags()},
		},
		{
			name: "WinterStart",
			usage: `
              WinterStart is the year of the first November to include
              in monthly means. Both WinterStart and WinterEnd must be set
              to select winters; otherwise all time steps are used.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{meansCmd.Flags()},
		},
		{
			name: "WinterEnd",
			usage: `
              WinterEnd is the year after the last November to include
              in monthly means.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{meansCmd.Flags()},
		},
		{
			name: "LogFile",
			usage: `
              LogFile is the path to a file where log messages should be
              written in addition to standard output.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "LogLevel",
			usage: `
              LogLevel is the minimum level of log messages to print:
              debug, info, warning, or error.`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("ICEGRID")
	Cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
			case []string:
				set.StringSliceP(option.name, option.shorthand, option.defaultVal.([]string), option.usage)
			case int:
				set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
			case []int:
				set.IntSliceP(option.name, option.shorthand, option.defaultVal.([]int), option.usage)
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(regionsCmd)
	Root.AddCommand(restrictCmd)
	Root.AddCommand(fillCmd)
	Root.AddCommand(meansCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(os.ExpandEnv(cfgpath))
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("icegrid: problem reading configuration file: %w", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "icegrid",
	Short: "Tools for gridded Arctic sea ice datasets.",
	Long: `IceGrid works with monthly sea ice thickness, concentration, and type
datasets on the NSIDC polar stereographic grid. Use the subcommands specified
below to restrict datasets to NSIDC regions, fill in missing grid cells, and
calculate regional monthly means.

Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'ICEGRID_var' where 'var' is the
name of the variable to be set.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	SilenceUsage:      true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of IceGrid.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("IceGrid v%s\n", icegrid.Version)
	},
	DisableAutoGenTag: true,
}

var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "List the region keys",
	Long: `regions prints the region keys and labels in the catalogue of InputFile,
or in RegionCatalogue if it is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := catalogue(os.ExpandEnv(Cfg.GetString("InputFile")), os.ExpandEnv(Cfg.GetString("RegionCatalogue")))
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 1, ' ', 0)
		fmt.Fprintln(w, "key\tlabel")
		for i, k := range c.Keys {
			fmt.Fprintf(w, "%d\t%s\n", k, c.Labels[i])
		}
		return w.Flush()
	},
	DisableAutoGenTag: true,
}

var restrictCmd = &cobra.Command{
	Use:   "restrict",
	Short: "Restrict a dataset to a set of regions",
	Long: `restrict reads InputFile, removes data outside of the regions
listed in Regions from every variable except sea ice concentration, and
writes the result to OutputFile.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		outputFile, err := checkOutputFile(Cfg.GetString("OutputFile"))
		if err != nil {
			return err
		}
		keys, err := regionKeys(Cfg.Get("Regions"))
		if err != nil {
			return err
		}
		log, closeLog, err := newLogger(cmd)
		if err != nil {
			return err
		}
		defer closeLog()

		d, err := loadDataset(Cfg.GetString("InputFile"), Cfg.GetString("RegionCatalogue"))
		if err != nil {
			return err
		}
		if log.IsLevelEnabled(logrus.DebugLevel) {
			log.WithField("hash", hash.Hash(d)).Debug("loaded dataset")
		}
		o, warnings, err := (&icegrid.RegionFilter{Log: log}).RestrictRegionally(d, keys)
		if err != nil {
			return err
		}
		if err := writeDataset(o, outputFile); err != nil {
			return err
		}
		log.WithFields(logrus.Fields{
			"file":     outputFile,
			"warnings": len(warnings),
			"hash":     hash.Hash(o),
		}).Info("wrote dataset")
		return nil
	},
	DisableAutoGenTag: true,
}

var fillCmd = &cobra.Command{
	Use:   "fill",
	Short: "Fill in missing grid cells",
	Long: `fill reads InputFile, adds a gap-filled copy of each variable in
FillVariables, with '_filled' appended to its name, and writes the result to
OutputFile.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		outputFile, err := checkOutputFile(Cfg.GetString("OutputFile"))
		if err != nil {
			return err
		}
		vars, err := cast.ToStringSliceE(Cfg.Get("FillVariables"))
		if err != nil {
			return fmt.Errorf("icegrid: invalid FillVariables: %w", err)
		}
		log, closeLog, err := newLogger(cmd)
		if err != nil {
			return err
		}
		defer closeLog()

		d, err := loadDataset(Cfg.GetString("InputFile"), "")
		if err != nil {
			return err
		}
		o, err := (&icegrid.Filler{Log: log}).Fill(d, vars...)
		if err != nil {
			return err
		}
		if err := writeDataset(o, outputFile); err != nil {
			return err
		}
		log.WithFields(logrus.Fields{
			"file": outputFile,
			"hash": hash.Hash(o),
		}).Info("wrote dataset")
		return nil
	},
	DisableAutoGenTag: true,
}

var meansCmd = &cobra.Command{
	Use:   "means",
	Short: "Print regional monthly means",
	Long: `means reads a gap-filled InputFile (see the fill command), restricts
it to Regions, and prints the mean ice thickness, thickness uncertainty, and
ice type fractions for each month.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		keys, err := regionKeys(Cfg.Get("Regions"))
		if err != nil {
			return err
		}
		start, err := cast.ToIntE(Cfg.Get("WinterStart"))
		if err != nil {
			return fmt.Errorf("icegrid: invalid WinterStart: %w", err)
		}
		end, err := cast.ToIntE(Cfg.Get("WinterEnd"))
		if err != nil {
			return fmt.Errorf("icegrid: invalid WinterEnd: %w", err)
		}
		log, closeLog, err := newLogger(cmd)
		if err != nil {
			return err
		}
		defer closeLog()

		d, err := loadDataset(Cfg.GetString("InputFile"), Cfg.GetString("RegionCatalogue"))
		if err != nil {
			return err
		}
		means, summary, err := Means(d, keys, start, end, log)
		if err != nil {
			return err
		}
		return printMeans(cmd.OutOrStdout(), summary, means)
	},
	DisableAutoGenTag: true,
}

// newLogger returns a logger that writes to the command output and,
// if LogFile is set, to that file. The returned function closes the
// log file.
func newLogger(cmd *cobra.Command) (*logrus.Logger, func() error, error) {
	level, err := logrus.ParseLevel(Cfg.GetString("LogLevel"))
	if err != nil {
		return nil, nil, fmt.Errorf("icegrid: invalid LogLevel: %w", err)
	}
	log := logrus.New()
	log.SetLevel(level)
	log.SetOutput(cmd.OutOrStdout())

	logFile := os.ExpandEnv(Cfg.GetString("LogFile"))
	if logFile == "" {
		return log, func() error { return nil }, nil
	}
	f, err := os.Create(logFile)
	if err != nil {
		return nil, nil, fmt.Errorf("icegrid: problem creating log file: %w", err)
	}
	log.SetOutput(io.MultiWriter(cmd.OutOrStdout(), f))
	return log, f.Close, nil
}

// printMeans writes monthly means as a table.
func printMeans(out io.Writer, summary string, means []icegrid.MonthlyMean) error {
	fmt.Fprintf(out, "Regions: %s\n", summary)
	w := tabwriter.NewWriter(out, 0, 8, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "month\tthickness (m)\tuncertainty (m)\tMYI (m)\tFYI (m)\tMYI (%)\tFYI (%)\t")
	for _, m := range means {
		fmt.Fprintf(w, "%s\t%.3f\t%.3f\t%.3f\t%.3f\t%.1f\t%.1f\t\n", m.Time.Format("2006-01"),
			m.Thickness, m.Uncertainty, m.MYIThickness, m.FYIThickness, m.PercentMYI, m.PercentFYI)
	}
	return w.Flush()
}
