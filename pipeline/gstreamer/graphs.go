/*
DESCRIPTION
  graphs.go provides constructors for the preview, record and playback
  pipelines of the camcorder.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package gstreamer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ausocean/utils/logging"
	"github.com/pkg/errors"
	"github.com/tinyzimmer/go-gst/gst"

	"github.com/ausocean/camcorder/config"
	"github.com/ausocean/camcorder/pipeline"
)

// quote quotes s as a launch property value.
func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

func parseBitrate(s string) (interface{}, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return nil, err
	}
	return uint(v), nil
}

// NewPreview returns the live preview pipeline, which shows the camera on
// the framebuffer with the menu overlaid:
//
//	v4l2src -> capsfilter -> queue -> textoverlay -> videoconvert -> fbdevsink
func NewPreview(c config.Config, l logging.Logger) (*GST, error) {
	desc := fmt.Sprintf(
		"v4l2src name=pre_source device=%s norm=%s"+
			" ! capsfilter name=pre_filter caps=%s"+
			" ! queue name=pre_queue"+
			" ! textoverlay name=pre_overlay font-desc=%s valignment=top halignment=left line-alignment=left"+
			" ! videoconvert name=pre_convert"+
			" ! fbdevsink name=pre_sink device=%s",
		quote(c.VideoDevice), c.VideoNorm,
		quote("video/x-raw,format=RGB"),
		quote(c.FontDesc),
		quote(c.Framebuffer),
	)
	g, err := newGST(pipeline.NamePreview, desc, l)
	if err != nil {
		return nil, err
	}
	g.bind(pipeline.ParamText, "pre_overlay", "text", true, nil)
	return g, nil
}

// NewRecord returns the recording pipeline. The camera is encoded to h264
// and muxed to file while a black status display carrying the overlay text
// is shown on the framebuffer:
//
//	v4l2src -> queue -> encoder -> capsfilter -> queue -> h264parse -> muxer -> queue -> filesink
//	videotestsrc -> capsfilter -> textoverlay -> videoconvert -> fbdevsink
//
// The encoder is volatile; the bitrate takes effect on the next Rebuild.
func NewRecord(c config.Config, l logging.Logger) (*GST, error) {
	encProps := []string{
		"target-bitrate=" + strconv.FormatUint(uint64(c.Bitrate), 10),
		"control-rate=" + c.ControlRate,
	}
	desc := fmt.Sprintf(
		"v4l2src name=rec_source device=%s norm=%s"+
			" ! queue name=rec_in_queue"+
			" ! %s name=rec_encoder %s"+
			" ! capsfilter name=rec_filter caps=%s"+
			" ! queue name=rec_enc_queue"+
			" ! h264parse name=rec_parser"+
			" ! %s name=rec_muxer"+
			" ! queue name=rec_out_queue"+
			" ! filesink name=rec_sink"+
			" videotestsrc name=rec_status pattern=black"+
			" ! capsfilter name=rec_status_filter caps=%s"+
			" ! textoverlay name=rec_overlay font-desc=%s valignment=top halignment=left line-alignment=left"+
			" ! videoconvert name=rec_convert"+
			" ! fbdevsink name=rec_display sync=false device=%s",
		quote(c.VideoDevice), c.VideoNorm,
		c.Encoder, strings.Join(encProps, " "),
		quote("video/x-h264,profile=high"),
		c.Muxer(),
		quote(fmt.Sprintf("video/x-raw,width=%d,height=%d,framerate=%d/1", c.StatusWidth, c.StatusHeight, c.StatusFPS)),
		quote(c.FontDesc),
		quote(c.Framebuffer),
	)
	g, err := newGST(pipeline.NameRecord, desc, l)
	if err != nil {
		return nil, err
	}
	g.bind(pipeline.ParamText, "rec_overlay", "text", true, nil)
	g.bind(pipeline.ParamLocation, "rec_sink", "location", false, nil)
	err = g.setVolatile(c.Encoder, "rec_encoder", "rec_in_queue", "rec_filter", encProps)
	if err != nil {
		return nil, err
	}
	g.bindVolatile(pipeline.ParamBitrate, "target-bitrate", parseBitrate)
	return g, nil
}

// NewPlayback returns the playback pipeline, which decodes a recording to
// the framebuffer with the overlay text on top:
//
//	filesrc -> demuxer ~> h264parse -> decoder -> queue -> textoverlay -> fbdevsink
//
// The demuxer's video pad is linked when it appears. The decoder is
// volatile.
func NewPlayback(c config.Config, l logging.Logger) (*GST, error) {
	desc := fmt.Sprintf(
		"filesrc name=play_source"+
			" ! %s name=play_demux"+
			" h264parse name=play_parser"+
			" ! %s name=play_decoder"+
			" ! queue name=play_queue"+
			" ! textoverlay name=play_overlay font-desc=%s valignment=top halignment=left line-alignment=left"+
			" ! fbdevsink name=play_sink device=%s",
		c.Demuxer(),
		c.Decoder,
		quote(c.PlaybackFontDesc),
		quote(c.Framebuffer),
	)
	g, err := newGST(pipeline.NamePlayback, desc, l)
	if err != nil {
		return nil, err
	}
	g.bind(pipeline.ParamText, "play_overlay", "text", true, nil)
	g.bind(pipeline.ParamLocation, "play_source", "location", false, nil)
	err = g.setVolatile(c.Decoder, "play_decoder", "play_parser", "play_queue", nil)
	if err != nil {
		return nil, err
	}

	demux, err := g.pipe.GetElementByName("play_demux")
	if err != nil {
		return nil, errors.Wrap(err, "no demuxer")
	}
	parser, err := g.pipe.GetElementByName("play_parser")
	if err != nil {
		return nil, errors.Wrap(err, "no parser")
	}
	demux.Connect("pad-added", func(self *gst.Element, src *gst.Pad) {
		onPadAdded(src, parser, l)
	})
	return g, nil
}

// onPadAdded links a new demuxer video pad to the sink of parser. Other
// streams are left unlinked.
func onPadAdded(src *gst.Pad, parser *gst.Element, l logging.Logger) {
	name := src.GetName()
	if !strings.HasPrefix(name, "video") {
		l.Debug(pkg+"ignoring demuxer pad", "pad", name)
		return
	}
	sink := parser.GetStaticPad("sink")
	if sink == nil {
		l.Error(pkg+"parser has no sink pad")
		return
	}
	if ret := src.Link(sink); ret != gst.PadLinkOK {
		l.Error(pkg+"could not link demuxer pad", "pad", name, "ret", ret)
		return
	}
	l.Debug(pkg+"demuxer pad linked", "pad", name)
}
