// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import "net/http"

// noop is the metrics service used until prometheus is initialized. Every meter it
// hands out discards observations.
type noop struct{}

func defaultNoopMetrics() Metrics { return noop{} }

var (
	_ Metrics           = noop{}
	_ HistogramMeter    = noop{}
	_ HistogramVecMeter = noop{}
	_ CountMeter        = noop{}
	_ CountVecMeter     = noop{}
	_ GaugeMeter        = noop{}
)

func (noop) GetOrCreateHistogramMeter(string, []int64) HistogramMeter { return noop{} }

func (noop) GetOrCreateHistogramVecMeter(string, []string, []int64) HistogramVecMeter {
	return noop{}
}

func (noop) GetOrCreateCountMeter(string) CountMeter                 { return noop{} }
func (noop) GetOrCreateCountVecMeter(string, []string) CountVecMeter { return noop{} }
func (noop) GetOrCreateGaugeMeter(string) GaugeMeter                 { return noop{} }
func (noop) GetOrCreateHandler() http.Handler                        { return http.NotFoundHandler() }

func (noop) Observe(int64)                              {}
func (noop) ObserveWithLabels(int64, map[string]string) {}
func (noop) Add(int64)                                  {}
func (noop) AddWithLabel(int64, map[string]string)      {}
func (noop) Set(int64)                                  {}
